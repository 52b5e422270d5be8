package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpshade/pocket-meta/internal/models"
)

// Divider separates the rendered template from the pack block.
const Divider = "\n\n---\n\n"

// FormatPack renders the directive block of a pack record.
func FormatPack(pack *models.PackRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pack Name: %s\n\n", pack.PackName)
	fmt.Fprintf(&b, "Objective: %s\n\n", pack.Goal)
	b.WriteString("Per Image Directives:\n")
	for _, line := range pack.DirectiveLines() {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	fmt.Fprintf(&b, "\nSystem Notes: %s", pack.SystemNotes)

	return b.String()
}

// Compose joins rendered with the formatted pack. With no pack it returns rendered unchanged.
func Compose(rendered string, pack *models.PackRecord) string {
	if pack == nil {
		return rendered
	}
	return rendered + Divider + FormatPack(pack)
}

// SnapshotPack is the exported shape of the active pack.
type SnapshotPack struct {
	PackName           string   `json:"packName"`
	Goal               string   `json:"goal"`
	PerImageDirectives []string `json:"perImageDirectives"`
	SystemNotes        string   `json:"systemNotes"`
}

// Snapshot is the structured export of a composition.
type Snapshot struct {
	RenderedTemplate string           `json:"renderedTemplate"`
	Pack             *SnapshotPack    `json:"pack"`
	Variables        models.Variables `json:"variables"`
}

// NewSnapshot builds the export value. A nil pack is exported as null.
func NewSnapshot(rendered string, pack *models.PackRecord, vars models.Variables) Snapshot {
	snap := Snapshot{
		RenderedTemplate: rendered,
		Variables:        vars.Clone(),
	}
	if pack != nil {
		snap.Pack = &SnapshotPack{
			PackName:           pack.PackName,
			Goal:               pack.Goal,
			PerImageDirectives: pack.DirectiveLines(),
			SystemNotes:        pack.SystemNotes,
		}
	}
	return snap
}

// MarshalSnapshot serializes the export as JSON indented by two spaces.
func MarshalSnapshot(rendered string, pack *models.PackRecord, vars models.Variables) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSnapshot(rendered, pack, vars)); err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
