package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/jyutdb/internal/model"
)

// Renderer writes merged databases and run summaries
type Renderer struct {
	indent bool
}

// NewRenderer creates a renderer. With indent the JSON is pretty-printed.
func NewRenderer(indent bool) *Renderer {
	return &Renderer{indent: indent}
}

// RenderJSON writes doc to path. updateTime is stamped by the caller; the file
// is written to a temp file in the same directory and renamed over path.
func (r *Renderer) RenderJSON(doc *model.Database, path string) error {
	var (
		data []byte
		err  error
	)
	if r.indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short human-readable report of a run
func (r *Renderer) RenderSummary(w io.Writer, report *Report) {
	fmt.Fprintf(w, "Run %s\n", report.RunID)
	fmt.Fprintf(w, "  partitions:  %d\n", len(report.Partitions))
	fmt.Fprintf(w, "  entries:     %d\n", report.Entries)
	fmt.Fprintf(w, "  collisions:  %d\n", len(report.Collisions))
	fmt.Fprintf(w, "  citations:   %d (%d unresolved)\n", report.Citations.References, report.Citations.Unresolved)
	fmt.Fprintf(w, "  groups:      %d related, %d refBy (%d dangling ids)\n",
		report.Relations.RelatedGroups, report.Relations.RefByGroups, report.Relations.Dangling)
	if report.Relations.FannedOut > 0 {
		fmt.Fprintf(w, "  fanned out:  %d variants\n", report.Relations.FannedOut)
	}
	if report.Cached > 0 {
		fmt.Fprintf(w, "  cached:      %d partitions\n", report.Cached)
	}
	if report.Output != "" {
		fmt.Fprintf(w, "✓ Wrote JSON: %s\n", report.Output)
	}
	if report.SQLite != "" {
		fmt.Fprintf(w, "✓ Wrote SQLite: %s\n", report.SQLite)
	}
	fmt.Fprintf(w, "  took:        %s\n", report.Took.Round(1e6))
}
