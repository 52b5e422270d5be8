package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-meta/internal/models"
)

// packItemDelegate renders a pack record with a marker on the active one.
type packItemDelegate struct {
	activeID *string
}

func (d packItemDelegate) Height() int                               { return 2 }
func (d packItemDelegate) Spacing() int                              { return 0 }
func (d packItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d packItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	rec, ok := listItem.(models.PackRecord)
	if !ok {
		return
	}

	marker := "  "
	if d.activeID != nil && rec.ID == *d.activeID {
		marker = StyleActiveMarker.Render("● ")
	}

	title := rec.Title()
	desc := "  " + rec.Description()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Render(title)
	} else {
		title = StyleText.Render(title)
	}
	desc = StyleTextDim.Render(desc)

	width := m.Width()
	if width > 4 && lipgloss.Width(desc) > width {
		desc = lipgloss.NewStyle().MaxWidth(width).Render(desc)
	}

	fmt.Fprintf(w, "%s%s\n%s", marker, title, desc)
}

// PackList shows the registry records and tracks which one is active.
type PackList struct {
	list     list.Model
	activeID *string
}

// NewPackList creates an empty pack list
func NewPackList() *PackList {
	activeID := new(string)
	l := list.New([]list.Item{}, packItemDelegate{activeID: activeID}, 40, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	keyMap := list.DefaultKeyMap()
	keyMap.ShowFullHelp = key.NewBinding(key.WithKeys("ctrl+h"))
	keyMap.Quit = key.NewBinding(key.WithDisabled())
	l.KeyMap = keyMap

	return &PackList{list: l, activeID: activeID}
}

// SetRecords replaces the items, keeping the cursor on the same record when possible.
// An applied filter survives while the records are unchanged; new or edited records
// clear it so the cursor can land on them.
func (p *PackList) SetRecords(records []models.PackRecord, activeID string) {
	*p.activeID = activeID
	if p.sameRecords(records) {
		return
	}

	current := p.SelectedID()
	if p.list.FilterState() != list.Unfiltered {
		p.list.ResetFilter()
	}

	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	p.list.SetItems(items)
	p.Focus(current)
}

func (p *PackList) sameRecords(records []models.PackRecord) bool {
	items := p.list.Items()
	if len(items) != len(records) {
		return false
	}
	for i, item := range items {
		if rec, ok := item.(models.PackRecord); !ok || rec != records[i] {
			return false
		}
	}
	return true
}

// Focus moves the cursor to id among the visible items.
func (p *PackList) Focus(id string) {
	for i, item := range p.list.VisibleItems() {
		if rec, ok := item.(models.PackRecord); ok && rec.ID == id {
			p.list.Select(i)
			return
		}
	}
}

// SelectedID returns the id under the cursor.
func (p *PackList) SelectedID() string {
	if rec, ok := p.list.SelectedItem().(models.PackRecord); ok {
		return rec.ID
	}
	return ""
}

// Filtering reports whether the filter input is taking keystrokes.
func (p *PackList) Filtering() bool {
	return p.list.FilterState() == list.Filtering
}

// SetSize updates the list size
func (p *PackList) SetSize(width, height int) {
	p.list.SetSize(max(width, 10), max(height, 2))
}

func (p *PackList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *PackList) View() string {
	if len(p.list.Items()) == 0 {
		return StyleTextDim.Render("No packs. Press n to add one.")
	}
	return p.list.View()
}
