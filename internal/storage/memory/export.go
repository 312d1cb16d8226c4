// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	v1 "github.com/gamebuildmode/wallgrid/internal/storage/memory/export/v1"
)

// ExportedFilePath returns the file written by the last Close.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

func (b *Backend) exportFileName() string {
	prefix := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(b.cfg.Session)
	if prefix == "" {
		prefix = "wallgrid"
	}
	name := fmt.Sprintf("%s_%s.json", prefix, b.started.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

// exportJSON writes the session to OutputDir. Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := v1.Build(&v1.SessionData{Started: b.started, Walls: b.walls}, time.Now())

	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName())

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(data); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}
