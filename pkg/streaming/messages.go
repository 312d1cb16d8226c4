// Package streaming defines the wire protocol of the live wall edit stream.
package streaming

import (
	"encoding/json"
	"time"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeHello          = "hello"
	TypeBye            = "bye"
	TypeSaveWall       = "save_wall"
	TypeRecordCut      = "record_cut"
	TypeDeleteCut      = "delete_cut"
	TypeFlagCut        = "flag_cut"
	TypeRecordSegments = "record_segments"
	TypeDeleteWall     = "delete_wall"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload opens a session. It is replayed after every reconnect.
type HelloPayload struct {
	Session string    `json:"session"`
	Started time.Time `json:"started"`
}

// CutPayload carries a placed or removed cut.
type CutPayload struct {
	Key core.WallKey `json:"key"`
	Cut core.WallCut `json:"cut"`
}

// FlagPayload carries a cut invalidated by a wall update.
type FlagPayload struct {
	Key  core.WallKey    `json:"key"`
	Flag core.FlaggedCut `json:"flag"`
}

// WallPayload names a removed wall.
type WallPayload struct {
	Key core.WallKey `json:"key"`
}

// SegmentsPayload carries the latest rebuild of a wall.
type SegmentsPayload struct {
	Key      core.WallKey                `json:"key"`
	Segments []core.ProcessedWallSegment `json:"segments"`
}
