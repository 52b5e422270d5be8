package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-meta/internal/models"
)

// VariableForm holds one text input per placeholder detected in the template.
type VariableForm struct {
	names   []string
	inputs  []textinput.Model
	focused int
	active  bool
	width   int
}

// NewVariableForm creates an empty variable form
func NewVariableForm() *VariableForm {
	return &VariableForm{width: 40}
}

// Sync rebuilds the inputs when the detected names change. Values come from vars, so
// an edit that removes and restores a placeholder gets its old value back. Inputs that
// are not being typed into pick up outside changes such as the pack_name sync.
func (f *VariableForm) Sync(names []string, vars models.Variables) {
	if !sameNames(f.names, names) {
		focusedName := ""
		if f.focused < len(f.names) {
			focusedName = f.names[f.focused]
		}

		f.names = append([]string(nil), names...)
		f.inputs = make([]textinput.Model, len(names))
		f.focused = 0
		for i, name := range names {
			in := textinput.New()
			in.Placeholder = "value for " + name
			in.Prompt = ""
			in.CharLimit = 0
			in.Width = f.width
			in.SetValue(vars[name])
			f.inputs[i] = in
			if name == focusedName {
				f.focused = i
			}
		}
		if f.active {
			f.focusCurrent()
		}
		return
	}

	for i, name := range f.names {
		if f.active && i == f.focused {
			continue
		}
		if f.inputs[i].Value() != vars[name] {
			f.inputs[i].SetValue(vars[name])
		}
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Len returns the number of inputs.
func (f *VariableForm) Len() int {
	return len(f.inputs)
}

// Focused returns the name whose input has focus, or "" when the form is empty.
func (f *VariableForm) Focused() string {
	if f.focused < len(f.names) {
		return f.names[f.focused]
	}
	return ""
}

// Focus gives keyboard focus to the form.
func (f *VariableForm) Focus() tea.Cmd {
	f.active = true
	return f.focusCurrent()
}

// Blur removes keyboard focus from the form.
func (f *VariableForm) Blur() {
	f.active = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *VariableForm) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focused {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// SetWidth resizes every input.
func (f *VariableForm) SetWidth(width int) {
	f.width = max(width, 10)
	for i := range f.inputs {
		f.inputs[i].Width = f.width
	}
}

// Update handles variable form keys. It reports the variable whose value changed.
func (f *VariableForm) Update(msg tea.Msg) (name, value string, changed bool, cmd tea.Cmd) {
	if len(f.inputs) == 0 {
		return "", "", false, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up":
			f.focused = (f.focused - 1 + len(f.inputs)) % len(f.inputs)
			return "", "", false, f.focusCurrent()
		case "down", "enter":
			f.focused = (f.focused + 1) % len(f.inputs)
			return "", "", false, f.focusCurrent()
		}
	}

	before := f.inputs[f.focused].Value()
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	after := f.inputs[f.focused].Value()
	if after != before {
		return f.names[f.focused], after, true, cmd
	}
	return "", "", false, cmd
}

// View renders one labelled line per variable, flagging the missing ones.
func (f *VariableForm) View(slots []models.Slot) string {
	if len(f.inputs) == 0 {
		return StyleTextDim.Render("No placeholders. Add {{ name }} to the template.")
	}

	resolved := make(map[string]bool, len(slots))
	for _, s := range slots {
		resolved[s.Name] = s.Resolved
	}

	labelWidth := 0
	for _, name := range f.names {
		labelWidth = max(labelWidth, lipgloss.Width(name))
	}

	var b strings.Builder
	for i, name := range f.names {
		label := StyleFormLabel.Render(fmt.Sprintf("%-*s", labelWidth, name))
		line := label + "  " + f.inputs[i].View()
		if !resolved[name] {
			line += " " + StyleMissing.Render("missing")
		}
		b.WriteString(line)
		if i < len(f.names)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// packInput edits one PackRecord field with the widget that suits it.
type packInput struct {
	field models.PackField
	input textinput.Model
	area  textarea.Model
}

func (p *packInput) value() string {
	if p.field.Multiline() {
		return p.area.Value()
	}
	return p.input.Value()
}

func (p *packInput) focus() tea.Cmd {
	if p.field.Multiline() {
		return p.area.Focus()
	}
	return p.input.Focus()
}

func (p *packInput) blur() {
	if p.field.Multiline() {
		p.area.Blur()
		return
	}
	p.input.Blur()
}

// PackForm edits the fields of one pack record. Edits apply as they are typed.
type PackForm struct {
	packID  string
	inputs  []packInput
	focused int
	closed  bool
}

// NewPackForm creates a form loaded with rec's current values.
func NewPackForm(rec models.PackRecord, width int) *PackForm {
	f := &PackForm{packID: rec.ID}
	for _, field := range models.PackFields {
		in := packInput{field: field}
		if field.Multiline() {
			ta := textarea.New()
			ta.CharLimit = 0
			ta.MaxHeight = 0
			ta.ShowLineNumbers = false
			ta.SetWidth(max(width-10, 20))
			ta.SetHeight(4)
			ta.SetValue(rec.Value(field))
			in.area = ta
		} else {
			ti := textinput.New()
			ti.Prompt = ""
			ti.CharLimit = 0
			ti.Width = max(width-10, 20)
			ti.SetValue(rec.Value(field))
			in.input = ti
		}
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].focus()
	return f
}

// PackID returns the id of the record being edited.
func (f *PackForm) PackID() string {
	return f.packID
}

// Field returns the focused field.
func (f *PackForm) Field() models.PackField {
	return f.inputs[f.focused].field
}

// IsClosed reports whether the user left the form.
func (f *PackForm) IsClosed() bool {
	return f.closed
}

// Update handles pack form keys and reports the field whose value changed.
func (f *PackForm) Update(msg tea.Msg) (field models.PackField, value string, changed bool, cmd tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			f.closed = true
			return 0, "", false, nil
		case "tab":
			return 0, "", false, f.move(1)
		case "shift+tab":
			return 0, "", false, f.move(-1)
		case "enter":
			// single-line fields advance; multi-line fields take the newline
			if !f.Field().Multiline() {
				return 0, "", false, f.move(1)
			}
		}
	}

	in := &f.inputs[f.focused]
	before := in.value()
	if in.field.Multiline() {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.input, cmd = in.input.Update(msg)
	}
	if after := in.value(); after != before {
		return in.field, after, true, cmd
	}
	return 0, "", false, cmd
}

func (f *PackForm) move(delta int) tea.Cmd {
	f.inputs[f.focused].blur()
	f.focused = (f.focused + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focused].focus()
}

// View renders the form.
func (f *PackForm) View() string {
	var sections []string
	sections = append(sections, StyleTitle.Render("Edit Pack "+f.packID))
	for i := range f.inputs {
		in := &f.inputs[i]
		label := in.field.String()
		if i == f.focused {
			label = "▶ " + label
		} else {
			label = "  " + label
		}
		var body string
		if in.field.Multiline() {
			body = in.area.View()
		} else {
			body = in.input.View()
		}
		sections = append(sections, StyleFormLabel.Render(label), body)
	}
	sections = append(sections, "", StyleTextDim.Render("Tab/Shift+Tab: move • Esc: done"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
