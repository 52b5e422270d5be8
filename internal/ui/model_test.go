package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-meta/internal/clipboard"
	"github.com/dpshade/pocket-meta/internal/config"
	"github.com/dpshade/pocket-meta/internal/logging"
	"github.com/dpshade/pocket-meta/internal/models"
	"github.com/dpshade/pocket-meta/internal/packs"
	"github.com/dpshade/pocket-meta/internal/session"
)

type fakeClipboard struct {
	writes []string
	fail   bool
}

func (f *fakeClipboard) Write(text string) error {
	if f.fail {
		return fmt.Errorf("clipboard unavailable")
	}
	f.writes = append(f.writes, text)
	return nil
}

func newTestModel(t *testing.T, clip clipboard.Writer) (*session.Session, Model) {
	t.Helper()
	registry, err := packs.NewRegistry(packs.DefaultSeed())
	require.NoError(t, err)

	sess := session.New("Make {{count}} {{ pack_name }}", models.Variables{"count": "3"}, registry, nil)
	cfg := config.Config{StatusDelay: time.Second, GlamourStyle: "notty"}

	m, err := NewModel(sess, cfg, logging.Nop(), clip)
	require.NoError(t, err)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sess, updated.(Model)
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(m Model, text string) Model {
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// drain runs cmd, unpacking batches, and keeps the messages that arrive promptly.
// Cursor blink timers are left behind.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// filterPacks types a filter into the pack list and accepts it.
func filterPacks(t *testing.T, m Model, query string) Model {
	t.Helper()
	m = typeText(m, "/")
	require.True(t, m.packs.Filtering())

	var cmd tea.Cmd
	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(query)})
	for _, msg := range drain(cmd) {
		if matches, ok := msg.(list.FilterMatchesMsg); ok {
			m, _ = send(m, matches)
		}
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.packs.Filtering())
	return m
}

func pressTab(m Model, n int) Model {
	for i := 0; i < n; i++ {
		m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	return m
}

func TestCopyCombined(t *testing.T) {
	clip := &fakeClipboard{}
	sess, m := newTestModel(t, clip)

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	require.Len(t, clip.writes, 1)
	assert.Equal(t, sess.Combined(), clip.writes[0])
	assert.True(t, strings.HasPrefix(clip.writes[0], "Make 3 US_ID_V1\n\n---\n\n"))
	assert.Equal(t, clipboard.StatusCopied, m.statusMsg)

	m, _ = send(m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.statusMsg)
}

func TestCopyJSON(t *testing.T) {
	clip := &fakeClipboard{}
	sess, m := newTestModel(t, clip)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y"), Alt: true})
	require.Len(t, clip.writes, 1)

	snapshot, err := sess.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, string(snapshot), clip.writes[0])
	assert.Equal(t, clipboard.StatusCopied, m.statusMsg)
}

func TestStaleStatusClearIgnored(t *testing.T) {
	clip := &fakeClipboard{}
	_, m := newTestModel(t, clip)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	first := m.statusSeq
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})

	m, _ = send(m, clearStatusMsg{seq: first})
	assert.Equal(t, clipboard.StatusCopied, m.statusMsg)
}

func TestCopyFailureKeepsSession(t *testing.T) {
	clip := &fakeClipboard{fail: true}
	sess, m := newTestModel(t, clip)
	rev := sess.Revision()
	combined := sess.Combined()

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, clipboard.StatusNotCopied, m.statusMsg)
	assert.Equal(t, "warning", m.statusType)
	assert.Equal(t, rev, sess.Revision())
	assert.Equal(t, combined, sess.Combined())
}

func TestBareKeysTypeIntoTemplate(t *testing.T) {
	clip := &fakeClipboard{}
	sess, m := newTestModel(t, clip)

	m = typeText(m, "c")
	assert.Empty(t, clip.writes)
	assert.Equal(t, "Make {{count}} {{ pack_name }}c", sess.Template())
	assert.Equal(t, sess.Template(), m.template.Value())
}

func TestTemplateEditAddsVariable(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})
	require.Equal(t, 2, m.variables.Len())

	m = typeText(m, " {{x}}")
	assert.Equal(t, []string{"count", "pack_name", "x"}, sess.Placeholders())
	assert.Equal(t, 3, m.variables.Len())
	assert.Equal(t, []string{"x"}, sess.Unresolved())
	assert.Contains(t, m.View(), "missing")
}

func TestVariableInput(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 1)
	require.Equal(t, PaneVariables, m.focus)
	require.Equal(t, "count", m.variables.Focused())

	m = typeText(m, "0")
	value, _ := sess.Variable("count")
	assert.Equal(t, "30", value)
	assert.Equal(t, "Make 30 US_ID_V1", sess.Rendered())
}

func TestEscLeavesEditor(t *testing.T) {
	_, m := newTestModel(t, &fakeClipboard{})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PanePacks, m.focus)
}

func TestSelectPack(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 2)
	require.Equal(t, PanePacks, m.focus)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, sess.ActivePack())
	assert.Equal(t, "TR_INVOICE", sess.ActivePack().PackName)
	value, _ := sess.Variable(models.PackNameVariable)
	assert.Equal(t, "TR_INVOICE", value)
	assert.Equal(t, "Selected TR_INVOICE", m.statusMsg)
}

func TestAddPack(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 2)
	m = typeText(m, "n")

	assert.Len(t, sess.Packs(), 4)
	active := sess.ActivePack()
	require.NotNil(t, active)
	assert.Equal(t, packs.DefaultPackName, active.PackName)
	assert.Equal(t, active.ID, m.packs.SelectedID())
	value, _ := sess.Variable(models.PackNameVariable)
	assert.Equal(t, packs.DefaultPackName, value)
}

func TestEditPack(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 2)
	m = typeText(m, "e")
	require.NotNil(t, m.packForm)
	assert.Equal(t, models.FieldName, m.packForm.Field())

	m = typeText(m, "!")
	rec, err := sess.ResolvePack("pack-1")
	require.NoError(t, err)
	assert.Equal(t, "US Identity Cards!", rec.Name)

	m = pressTab(m, 1)
	assert.Equal(t, models.FieldPackName, m.packForm.Field())
	m = typeText(m, "_B")
	value, _ := sess.Variable(models.PackNameVariable)
	assert.Equal(t, "US_ID_V1_B", value)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.packForm)
	assert.Equal(t, PanePacks, m.focus)
}

func TestSelectAndEditUnderFilter(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 2)
	m = filterPacks(t, m, "receipt")
	require.Equal(t, "pack-3", m.packs.SelectedID())

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, sess.ActivePack())
	assert.Equal(t, "pack-3", sess.ActivePack().ID)
	assert.Equal(t, "pack-3", m.packs.SelectedID())
	assert.NotEmpty(t, m.packs.list.VisibleItems())

	m = typeText(m, "e")
	require.NotNil(t, m.packForm)
	assert.Equal(t, "pack-3", m.packForm.PackID())
}

func TestAddPackClearsFilter(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 2)
	m = filterPacks(t, m, "receipt")
	m = typeText(m, "n")

	active := sess.ActivePack()
	require.NotNil(t, active)
	assert.Equal(t, list.Unfiltered, m.packs.list.FilterState())
	assert.Len(t, m.packs.list.VisibleItems(), 4)
	assert.Equal(t, active.ID, m.packs.SelectedID())
}

func TestOutsideSessionChangeReachesViews(t *testing.T) {
	sess, m := newTestModel(t, &fakeClipboard{})

	sess.SetTemplate("Hello {{ who }}")
	sess.SetVariable("who", "world")
	assert.NotEqual(t, "Hello {{ who }}", m.template.Value())

	m, _ = send(m, struct{}{})
	assert.Equal(t, "Hello {{ who }}", m.template.Value())
	assert.Contains(t, m.variables.View(sess.Slots()), "who")
	assert.Contains(t, m.preview.View(), "Hello world")
}

func TestTogglePreview(t *testing.T) {
	_, m := newTestModel(t, &fakeClipboard{})

	m = pressTab(m, 3)
	require.Equal(t, PanePreview, m.focus)
	m = typeText(m, "v")

	assert.Equal(t, PreviewJSON, m.previewMode)
	assert.Contains(t, m.renderPreview(), "renderedTemplate")
}

func TestQuit(t *testing.T) {
	_, m := newTestModel(t, &fakeClipboard{})

	m = typeText(m, "q")
	assert.Equal(t, PaneTemplate, m.focus)

	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
