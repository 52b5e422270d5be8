// Package renderer turns a meta prompt template into its final payloads: it finds
// placeholders, substitutes variable values and composes the result with a pack's
// directive block.
//
// Every function here is pure. None of them mutate their inputs and none of them
// fail on any input string.
package renderer

import (
	"strings"

	"github.com/dpshade/pocket-meta/internal/models"
)

// Render replaces each well-formed marker with its non-empty value. Markers whose
// value is absent or empty are emitted as {{name}} with the name trimmed.
func Render(template string, vars models.Variables) string {
	return markerPattern.ReplaceAllStringFunc(template, func(marker string) string {
		name := strings.TrimSpace(marker[2 : len(marker)-2])
		if name == "" {
			return marker
		}
		if value := vars[name]; value != "" {
			return value
		}
		return Marker(name)
	})
}

// Unresolved returns the placeholders of template that Render would leave as markers.
func Unresolved(template string, vars models.Variables) []string {
	missing := []string{}
	for _, name := range Scan(template) {
		if !vars.Resolved(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Slots pairs each placeholder of template with its current value.
func Slots(template string, vars models.Variables) []models.Slot {
	names := Scan(template)
	slots := make([]models.Slot, 0, len(names))
	for _, name := range names {
		slots = append(slots, models.Slot{
			Name:     name,
			Value:    vars[name],
			Resolved: vars.Resolved(name),
		})
	}
	return slots
}
