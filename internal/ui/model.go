// Package ui implements the interactive meta prompt editor.
//
// The screen has four panes: the template editor, one input per detected placeholder,
// the pack list and a preview of the combined text (or its JSON snapshot). All state
// lives in a session.Session; the model re-reads it whenever the session revision moves.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dpshade/pocket-meta/internal/clipboard"
	"github.com/dpshade/pocket-meta/internal/config"
	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/logging"
	"github.com/dpshade/pocket-meta/internal/session"
)

// createGlamourRenderer creates a glamour renderer with improved contrast handling
func createGlamourRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	if style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	var styleOption glamour.TermRendererOption
	switch profile {
	case termenv.TrueColor, termenv.ANSI256:
		if lipgloss.HasDarkBackground() {
			styleOption = glamour.WithStandardStyle("dark")
		} else {
			styleOption = glamour.WithStandardStyle("light")
		}
	default:
		// limited color terminals
		styleOption = glamour.WithAutoStyle()
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Pane identifies the focused area of the screen.
type Pane int

const (
	PaneTemplate Pane = iota
	PaneVariables
	PanePacks
	PanePreview
)

var paneOrder = []Pane{PaneTemplate, PaneVariables, PanePacks, PanePreview}

func (p Pane) String() string {
	switch p {
	case PaneTemplate:
		return "Template"
	case PaneVariables:
		return "Variables"
	case PanePacks:
		return "Packs"
	case PanePreview:
		return "Preview"
	default:
		return "Unknown"
	}
}

// PreviewMode selects what the preview pane shows.
type PreviewMode int

const (
	PreviewCombined PreviewMode = iota
	PreviewJSON
)

// clearStatusMsg clears the status line if no newer status replaced it.
type clearStatusMsg struct {
	seq int
}

// Model represents the TUI application state
type Model struct {
	sess       *session.Session
	cfg        config.Config
	log        *logging.Logger
	clip       clipboard.Writer
	errHandler *errors.TUIErrorHandler

	focus       Pane
	template    textarea.Model
	variables   *VariableForm
	packs       *PackList
	packForm    *PackForm
	preview     viewport.Model
	previewMode PreviewMode
	help        help.Model
	keys        KeyMap

	glamourRenderer *glamour.TermRenderer
	changed         *bool
	synced          bool

	width  int
	height int

	statusMsg  string
	statusType string
	statusSeq  int

	showFullHelp bool
}

// KeyMap defines all key bindings
type KeyMap struct {
	NextPane      key.Binding
	PrevPane      key.Binding
	Back          key.Binding
	Select        key.Binding
	NewPack       key.Binding
	EditPack      key.Binding
	Copy          key.Binding
	CopyJSON      key.Binding
	TogglePreview key.Binding
	Help          key.Binding
	Quit          key.Binding
	ForceQuit     key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Copy, k.CopyJSON, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Back},
		{k.Select, k.NewPack, k.EditPack},
		{k.Copy, k.CopyJSON, k.TogglePreview},
		{k.Help, k.Quit, k.ForceQuit},
	}
}

var keys = KeyMap{
	NextPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next pane"),
	),
	PrevPane: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("Shift+Tab", "previous pane"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "leave editor"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select pack"),
	),
	NewPack: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new pack"),
	),
	EditPack: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit pack"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c", "ctrl+y"),
		key.WithHelp("c/Ctrl+y", "copy"),
	),
	CopyJSON: key.NewBinding(
		key.WithKeys("y", "alt+y"),
		key.WithHelp("y/Alt+y", "copy as JSON"),
	),
	TogglePreview: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "text/JSON preview"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+c", "quit"),
	),
}

// NewModel creates a new TUI model
func NewModel(sess *session.Session, cfg config.Config, log *logging.Logger, clip clipboard.Writer) (*Model, error) {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.StatusDelay <= 0 {
		cfg.StatusDelay = config.DefaultConfig().StatusDelay
	}

	ta := textarea.New()
	ta.Placeholder = "Write the template. Use {{ name }} for values filled in below."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(10)
	ta.SetValue(sess.Template())
	ta.Focus()

	renderer, err := createGlamourRenderer(cfg.GlamourStyle, 60)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	changed := new(bool)
	sess.Subscribe(func(session.Event) { *changed = true })

	m := &Model{
		sess:            sess,
		cfg:             cfg,
		log:             log,
		clip:            clip,
		errHandler:      errors.NewTUIErrorHandler(false, log),
		focus:           PaneTemplate,
		template:        ta,
		variables:       NewVariableForm(),
		packs:           NewPackList(),
		preview:         viewport.New(60, 10),
		help:            help.New(),
		keys:            keys,
		glamourRenderer: renderer,
		changed:         changed,
	}
	if active := sess.ActivePack(); active != nil {
		m.packs.SetRecords(sess.Packs(), active.ID)
		m.packs.Focus(active.ID)
	}
	m.refresh()
	return m, nil
}

// Run starts the interactive editor on the terminal.
func Run(sess *session.Session, cfg config.Config, log *logging.Logger) error {
	initializeColors(cfg.GlamourStyle)

	// the escape sequence fallback goes to stderr so it never mixes with the frame
	m, err := NewModel(sess, cfg, log, clipboard.Default(os.Stderr))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to start the editor")
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Editor stopped unexpectedly")
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// typing reports whether bare keys belong to a text input.
func (m *Model) typing() bool {
	if m.packForm != nil {
		return true
	}
	switch m.focus {
	case PaneTemplate, PaneVariables:
		return true
	case PanePacks:
		return m.packs.Filtering()
	}
	return false
}

// matches is key.Matches limited to modified keys while the user is typing.
func (m *Model) matches(msg tea.KeyMsg, b key.Binding) bool {
	if !key.Matches(msg, b) {
		return false
	}
	if !m.typing() {
		return true
	}
	s := msg.String()
	return msg.Type != tea.KeyRunes || strings.HasPrefix(s, "alt+")
}

// reportError logs err and shows it on the status line.
func (m *Model) reportError(err error) tea.Cmd {
	handled := m.errHandler.HandleError(err)
	statusType := "warning"
	if m.errHandler.IsSevere(handled) {
		statusType = "error"
	}
	return m.setStatus(m.errHandler.FormatError(handled), statusType)
}

// setStatus shows text on the status line and schedules its removal.
func (m *Model) setStatus(text, statusType string) tea.Cmd {
	m.statusSeq++
	m.statusMsg = text
	m.statusType = statusType
	seq := m.statusSeq
	return tea.Tick(m.cfg.StatusDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) setFocus(p Pane) tea.Cmd {
	m.template.Blur()
	m.variables.Blur()

	m.focus = p
	switch p {
	case PaneTemplate:
		return m.template.Focus()
	case PaneVariables:
		return m.variables.Focus()
	}
	return nil
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	idx := 0
	for i, p := range paneOrder {
		if p == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(paneOrder)) % len(paneOrder)
	return m.setFocus(paneOrder[idx])
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

		if m.packForm != nil {
			cmds = append(cmds, m.updatePackForm(msg))
			m.refresh()
			return m, tea.Batch(cmds...)
		}

		switch {
		case m.matches(msg, m.keys.NextPane):
			cmds = append(cmds, m.cycleFocus(1))
		case m.matches(msg, m.keys.PrevPane):
			cmds = append(cmds, m.cycleFocus(-1))
		case m.matches(msg, m.keys.Copy):
			cmds = append(cmds, m.copy(PreviewCombined))
		case m.matches(msg, m.keys.CopyJSON):
			cmds = append(cmds, m.copy(PreviewJSON))
		case m.matches(msg, m.keys.Help):
			m.showFullHelp = !m.showFullHelp
		case m.matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.typing() && m.focus != PanePacks && key.Matches(msg, m.keys.Back):
			cmds = append(cmds, m.setFocus(PanePacks))
		default:
			cmds = append(cmds, m.updateFocused(msg))
		}

	default:
		// cursor blink and other component messages
		switch m.focus {
		case PaneTemplate:
			var cmd tea.Cmd
			m.template, cmd = m.template.Update(msg)
			cmds = append(cmds, cmd)
		case PaneVariables:
			_, _, _, cmd := m.variables.Update(msg)
			cmds = append(cmds, cmd)
		case PanePacks:
			cmds = append(cmds, m.packs.Update(msg))
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// updateFocused routes a key to the focused pane.
func (m *Model) updateFocused(msg tea.KeyMsg) tea.Cmd {
	switch m.focus {
	case PaneTemplate:
		var cmd tea.Cmd
		m.template, cmd = m.template.Update(msg)
		m.sess.SetTemplate(m.template.Value())
		return cmd

	case PaneVariables:
		name, value, changed, cmd := m.variables.Update(msg)
		if changed {
			m.sess.SetVariable(name, value)
		}
		return cmd

	case PanePacks:
		if m.packs.Filtering() {
			return m.packs.Update(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Select):
			id := m.packs.SelectedID()
			if id == "" {
				return nil
			}
			if err := m.sess.SelectPack(id); err != nil {
				return m.reportError(err)
			}
			return m.setStatus("Selected "+m.sess.ActivePack().PackName, "success")
		case key.Matches(msg, m.keys.NewPack):
			rec := m.sess.AddPack()
			m.refresh()
			m.packs.Focus(rec.ID)
			return m.setStatus("Added "+rec.ID, "success")
		case key.Matches(msg, m.keys.EditPack):
			rec, err := m.sess.ResolvePack(m.packs.SelectedID())
			if err != nil {
				return nil
			}
			m.packForm = NewPackForm(*rec, m.width)
			return nil
		}
		return m.packs.Update(msg)

	case PanePreview:
		if key.Matches(msg, m.keys.TogglePreview) {
			if m.previewMode == PreviewCombined {
				m.previewMode = PreviewJSON
			} else {
				m.previewMode = PreviewCombined
			}
			m.synced = false
			return nil
		}
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updatePackForm(msg tea.KeyMsg) tea.Cmd {
	field, value, changed, cmd := m.packForm.Update(msg)
	if changed {
		if err := m.sess.UpdatePack(m.packForm.PackID(), field, value); err != nil {
			m.packForm = nil
			return m.reportError(err)
		}
	}
	if m.packForm.IsClosed() {
		m.packForm = nil
	}
	return cmd
}

// copy sends the combined text or the JSON snapshot through the clipboard boundary.
// A failure only changes the status line.
func (m *Model) copy(mode PreviewMode) tea.Cmd {
	text := m.sess.Combined()
	if mode == PreviewJSON {
		data, err := m.sess.Snapshot()
		if err != nil {
			return m.reportError(err)
		}
		text = string(data)
	}

	res := clipboard.Copy(m.clip, text)
	if !res.Copied {
		_ = m.errHandler.HandleError(res.Err)
		return m.setStatus(res.Status, "warning")
	}
	return m.setStatus(res.Status, "success")
}

// refresh pulls derived views out of the session after it signalled a change.
func (m *Model) refresh() {
	if m.synced && !*m.changed {
		return
	}
	*m.changed = false
	m.synced = true
	m.log.Debug("refreshing views", "revision", m.sess.Revision())

	if m.template.Value() != m.sess.Template() {
		m.template.SetValue(m.sess.Template())
	}
	m.variables.Sync(m.sess.Placeholders(), m.sess.Variables())

	activeID := ""
	if active := m.sess.ActivePack(); active != nil {
		activeID = active.ID
	}
	m.packs.SetRecords(m.sess.Packs(), activeID)

	m.preview.SetContent(m.renderPreview())
}

// renderPreview formats the preview pane content, falling back to plain text when
// markdown rendering fails.
func (m *Model) renderPreview() string {
	var source, plain string
	switch m.previewMode {
	case PreviewJSON:
		data, err := m.sess.Snapshot()
		if err != nil {
			return m.errHandler.FormatError(err)
		}
		plain = string(data)
		source = "```json\n" + plain + "\n```"
	default:
		plain = m.sess.Combined()
		source = plain
	}

	if m.glamourRenderer == nil {
		return plain
	}
	out, err := m.glamourRenderer.Render(source)
	if err != nil {
		m.log.Debug("preview render failed", "error", err)
		return plain
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) resize() {
	colWidth := max(m.width/2, 20)
	bodyHeight := max(m.height-4, 10) // header, status and help lines

	templateHeight := max(bodyHeight/2-3, 3)
	m.template.SetWidth(colWidth - 4)
	m.template.SetHeight(templateHeight)
	m.variables.SetWidth(colWidth - 20)

	packsHeight := max(bodyHeight/3-3, 2)
	m.packs.SetSize(colWidth-4, packsHeight)

	m.preview.Width = colWidth - 4
	m.preview.Height = max(bodyHeight-packsHeight-6, 3)

	if renderer, err := createGlamourRenderer(m.cfg.GlamourStyle, max(colWidth-6, 20)); err == nil {
		m.glamourRenderer = renderer
	}
	m.synced = false
}

func (m Model) View() string {
	if m.packForm != nil {
		return CenterModal(StyleModal.Render(m.packForm.View()), m.width, m.height)
	}

	colWidth := max(m.width/2, 20)

	header := StyleTitle.Render("Pocket Meta")
	if active := m.sess.ActivePack(); active != nil {
		header += StyleTextMuted.Render("pack: " + active.PackName)
	} else {
		header += StyleTextMuted.Render("no pack selected")
	}

	varsTitle := "Variables"
	if missing := m.sess.Unresolved(); len(missing) > 0 {
		varsTitle = fmt.Sprintf("Variables (%d missing)", len(missing))
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		CreatePane("Template", m.template.View(), m.focus == PaneTemplate, colWidth),
		CreatePane(varsTitle, m.variables.View(m.sess.Slots()), m.focus == PaneVariables, colWidth),
	)

	previewTitle := "Preview"
	if m.previewMode == PreviewJSON {
		previewTitle = "Preview (JSON)"
	}
	right := lipgloss.JoinVertical(lipgloss.Left,
		CreatePane("Packs", m.packs.View(), m.focus == PanePacks, colWidth),
		CreatePane(previewTitle, m.preview.View(), m.focus == PanePreview, colWidth),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if m.height > 4 {
		body = truncateLines(body, m.height-3)
	}

	status := ""
	if m.statusMsg != "" {
		status = CreateStatus(m.statusMsg, m.statusType)
	}

	m.help.ShowAll = m.showFullHelp
	helpView := CreateGuaranteedHelp(m.help.View(m.keys), m.width)
	if m.showFullHelp {
		helpView = m.help.View(m.keys)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, helpView)
}
