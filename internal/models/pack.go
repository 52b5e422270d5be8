package models

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// PackRecord is a named bundle of generation directives selectable as a unit.
type PackRecord struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	PackName    string `yaml:"pack_name" json:"packName"`
	Goal        string `yaml:"goal" json:"goal"`
	Directives  string `yaml:"directives" json:"perImageDirectives"` // newline-delimited
	SystemNotes string `yaml:"system_notes" json:"systemNotes"`
}

// DirectiveLines splits Directives into trimmed, non-blank lines.
func (p PackRecord) DirectiveLines() []string {
	lines := []string{}
	for _, line := range strings.Split(p.Directives, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// PackField names one editable field of a PackRecord. ID is not editable.
type PackField int

const (
	FieldName PackField = iota
	FieldPackName
	FieldGoal
	FieldDirectives
	FieldSystemNotes
)

// PackFields lists the editable fields in display order.
var PackFields = []PackField{FieldName, FieldPackName, FieldGoal, FieldDirectives, FieldSystemNotes}

func (f PackField) String() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldPackName:
		return "Pack Name"
	case FieldGoal:
		return "Objective"
	case FieldDirectives:
		return "Per Image Directives"
	case FieldSystemNotes:
		return "System Notes"
	default:
		return "Unknown"
	}
}

// Multiline reports whether the field holds free-form multi-line text.
func (f PackField) Multiline() bool {
	return f == FieldDirectives || f == FieldSystemNotes
}

// Value returns the current value of field f.
func (p PackRecord) Value(f PackField) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldPackName:
		return p.PackName
	case FieldGoal:
		return p.Goal
	case FieldDirectives:
		return p.Directives
	case FieldSystemNotes:
		return p.SystemNotes
	default:
		return ""
	}
}

// FilterValue satisfies the bubbles list.Item interface
func (p PackRecord) FilterValue() string {
	return p.Name + " " + p.PackName
}

// Title satisfies the list.Item interface
func (p PackRecord) Title() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Description satisfies the list.Item interface
func (p PackRecord) Description() string {
	goal := strings.Join(strings.Fields(p.Goal), " ")
	goal = ansi.Truncate(goal, 60, "...")
	if goal == "" {
		return p.PackName
	}
	return p.PackName + " • " + goal
}
