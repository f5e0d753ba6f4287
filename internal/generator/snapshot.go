package generator

import (
	"bytes"
	"fmt"
	"log"

	"github.com/natefinch/atomic"
)

// WriteSnapshot renders a static comparison page and atomically replaces outputPath,
// so a browser never reads a partially written file.
func WriteSnapshot(outputPath string, data PageData) error {
	data.Static = true

	var buf bytes.Buffer
	if err := RenderPage(&buf, data); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	log.Printf("[snapshot] %d panels written to %s", len(data.Panels), outputPath)
	return nil
}
