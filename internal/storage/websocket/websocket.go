// Package websocket streams wall edits to a remote build viewer. Edits are
// fire-and-forget; the session hello and the closing bye wait for a server ack.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/pkg/core"
	"github.com/gamebuildmode/wallgrid/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
	Session string `json:"session" mapstructure:"session"`
}

// Backend implements storage.Backend but not storage.Exportable.
type Backend struct {
	conn *connection
	cfg  Config
	log  logging.Logger
}

func New(cfg Config, log logging.Logger) *Backend {
	if log == nil {
		log = logging.Nop()
	}
	return &Backend{
		conn: newConnection(log),
		cfg:  cfg,
		log:  log,
	}
}

// Init connects and opens the session.
func (b *Backend) Init() error {
	if err := b.conn.dial(b.cfg.URL, b.cfg.Secret); err != nil {
		return err
	}

	hello, err := marshalEnvelope(streaming.TypeHello, streaming.HelloPayload{
		Session: b.cfg.Session,
		Started: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	b.conn.mu.Lock()
	b.conn.hello = hello
	b.conn.mu.Unlock()

	if err := b.conn.sendAndWait(hello, streaming.TypeHello, ackTimeout); err != nil {
		_ = b.conn.close()
		return err
	}
	b.log.Info("edit stream opened", "url", b.cfg.URL, "session", b.cfg.Session)
	return nil
}

// Close waits for the server to ack bye, which it sends after every queued
// edit, then disconnects.
func (b *Backend) Close() error {
	data, err := marshalEnvelope(streaming.TypeBye, nil)
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeBye, ackTimeout)
	}
	if err != nil {
		b.log.Warn("edit stream closed without ack", "error", err)
	}
	if n := b.conn.droppedCount(); n > 0 {
		b.log.Warn("edit stream dropped messages", "count", n)
	}
	return b.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

func (b *Backend) SaveWall(_ context.Context, w core.WallRecord) error {
	return b.sendEnvelope(streaming.TypeSaveWall, w)
}

func (b *Backend) RecordCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	return b.sendEnvelope(streaming.TypeRecordCut, streaming.CutPayload{Key: key, Cut: cut})
}

func (b *Backend) DeleteCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	return b.sendEnvelope(streaming.TypeDeleteCut, streaming.CutPayload{Key: key, Cut: cut})
}

func (b *Backend) FlagCut(_ context.Context, key core.WallKey, f core.FlaggedCut) error {
	return b.sendEnvelope(streaming.TypeFlagCut, streaming.FlagPayload{Key: key, Flag: f})
}

func (b *Backend) DeleteWall(_ context.Context, key core.WallKey) error {
	return b.sendEnvelope(streaming.TypeDeleteWall, streaming.WallPayload{Key: key})
}

func (b *Backend) RecordSegments(_ context.Context, key core.WallKey, segs []core.ProcessedWallSegment) error {
	if segs == nil {
		segs = []core.ProcessedWallSegment{}
	}
	return b.sendEnvelope(streaming.TypeRecordSegments, streaming.SegmentsPayload{Key: key, Segments: segs})
}
