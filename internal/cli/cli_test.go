package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-meta/internal/clipboard"
	"github.com/dpshade/pocket-meta/internal/config"
	"github.com/dpshade/pocket-meta/internal/logging"
	"github.com/dpshade/pocket-meta/internal/session"
)

type harness struct {
	cli     *CLI
	out     *bytes.Buffer
	err     *bytes.Buffer
	copied  []string
	failing bool
	cfgFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log_level: error\ndata_dir: "+dir+"\n"), 0o644))

	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}, cfgFile: cfgFile}
	h.cli = NewCLI(Options{
		Out: h.out,
		Err: h.err,
		Clipboard: clipboard.WriterFunc(func(text string) error {
			if h.failing {
				return fmt.Errorf("no clipboard")
			}
			h.copied = append(h.copied, text)
			return nil
		}),
	})
	return h
}

func (h *harness) run(args ...string) int {
	return h.cli.Execute(append([]string{"--config", h.cfgFile}, args...))
}

func TestScan(t *testing.T) {
	h := newHarness(t)
	code := h.run("scan", "--template", "Hi {{ name }} and {{name}}, see {{x}}")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "name\nx\n", h.out.String())
}

func TestScanJSON(t *testing.T) {
	h := newHarness(t)
	code := h.run("scan", "--format", "json", "--template", "{{a}} {{b}}", "--var", "a=1")
	require.Equal(t, 0, code, h.err.String())

	var slots []map[string]interface{}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &slots))
	require.Len(t, slots, 2)
	assert.Equal(t, "a", slots[0]["name"])
	assert.Equal(t, true, slots[0]["resolved"])
	assert.Equal(t, false, slots[1]["resolved"])
}

func TestRender(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--template", "Hi {{ name }}, {{name}}! {{ x }}", "--var", "name=Ada")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "Hi Ada, Ada! {{x}}\n", h.out.String())
}

func TestRenderValueKeepsEquals(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--template", "{{eq}}", "--var", "eq=a=b")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "a=b\n", h.out.String())
}

func TestRenderStrict(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--strict", "--template", "{{ a }} {{b}}", "--var", "a=1")
	assert.Equal(t, 1, code)
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.err.String(), "1 placeholder(s) left unresolved")
}

func TestRenderFromTemplateFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Make {{count}} items"), 0o644))

	code := h.run("render", "--template-file", path, "--var", "count=3")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "Make 3 items\n", h.out.String())
}

func TestInvalidVar(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--var", "novalue")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.err.String(), "WARNING:")
	assert.Contains(t, h.err.String(), "expected name=value")
}

func TestComposeWithPack(t *testing.T) {
	h := newHarness(t)
	code := h.run("compose", "--template", "Use {{pack_name}}", "--pack", "TR_INVOICE")
	require.Equal(t, 0, code, h.err.String())

	out := h.out.String()
	assert.True(t, strings.HasPrefix(out, "Use TR_INVOICE\n\n---\n\nPack Name: TR_INVOICE\n\n"), out)
	assert.Contains(t, out, "- Crumpled paper photographed on a desk\n")
	assert.True(t, strings.HasSuffix(out, "System Notes: Amounts in TRY. Tax numbers must be syntactically valid but fictional.\n"))
}

func TestComposeNoPack(t *testing.T) {
	h := newHarness(t)
	code := h.run("compose", "--no-pack", "--template", "plain")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "plain\n", h.out.String())
}

func TestComposeUnknownPack(t *testing.T) {
	h := newHarness(t)
	code := h.run("compose", "--pack", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.err.String(), "pack 'nope' not found")
}

func TestVarOverridesSelectedPackName(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--template", "{{pack_name}}", "--pack", "pack-3", "--var", "pack_name=CUSTOM")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, "CUSTOM\n", h.out.String())
}

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "snap.json")
	code := h.run("export", "--template", "{{a}} <b>", "--var", "a=1", "--output", path)
	require.Equal(t, 0, code, h.err.String())
	assert.Contains(t, h.out.String(), "Snapshot written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"renderedTemplate": "1 <b>"`)

	var snap struct {
		Pack struct {
			PackName           string   `json:"packName"`
			PerImageDirectives []string `json:"perImageDirectives"`
		} `json:"pack"`
		Variables map[string]string `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "US_ID_V1", snap.Pack.PackName)
	assert.Len(t, snap.Pack.PerImageDirectives, 3)
	assert.Equal(t, "1", snap.Variables["a"])
	assert.Equal(t, "US_ID_V1", snap.Variables["pack_name"])
}

func TestCopy(t *testing.T) {
	h := newHarness(t)
	code := h.run("copy", "--template", "T", "--pack", "pack-3")
	require.Equal(t, 0, code, h.err.String())
	assert.Equal(t, clipboard.StatusCopied+"\n", h.out.String())
	require.Len(t, h.copied, 1)
	assert.True(t, strings.HasPrefix(h.copied[0], "T\n\n---\n\nPack Name: RECEIPT_MIX"))
}

func TestCopyJSON(t *testing.T) {
	h := newHarness(t)
	code := h.run("copy", "--json", "--template", "T")
	require.Equal(t, 0, code, h.err.String())
	require.Len(t, h.copied, 1)
	assert.True(t, json.Valid([]byte(h.copied[0])))
}

func TestCopyFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.failing = true
	code := h.run("copy", "--template", "T")
	assert.Equal(t, 0, code)
	assert.Contains(t, h.err.String(), "Warning: "+clipboard.StatusNotCopied)
	assert.Empty(t, h.copied)
}

func TestPacksList(t *testing.T) {
	h := newHarness(t)
	code := h.run("packs", "list")
	require.Equal(t, 0, code, h.err.String())
	out := h.out.String()
	for _, want := range []string{"pack-1", "US_ID_V1", "pack-2", "TR_INVOICE", "pack-3", "RECEIPT_MIX"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "*")
}

func TestPacksFind(t *testing.T) {
	h := newHarness(t)
	code := h.run("packs", "find", "invoice", "--format", "json")
	require.Equal(t, 0, code, h.err.String())

	var found []map[string]interface{}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &found))
	require.NotEmpty(t, found)
	assert.Equal(t, "TR_INVOICE", found[0]["packName"])
}

func TestPacksShow(t *testing.T) {
	h := newHarness(t)
	code := h.run("packs", "show", "RECEIPT_MIX")
	require.Equal(t, 0, code, h.err.String())
	assert.True(t, strings.HasPrefix(h.out.String(), "Pack Name: RECEIPT_MIX\n\nObjective: "))
}

func TestSeedFileRoundTrip(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("seed"), h.err.String())
	assert.Contains(t, h.out.String(), "packs:")

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`template: "Hello {{ who }}"
variables:
  who: World
packs: []
`), 0o644))

	h2 := newHarness(t)
	code := h2.run("compose", "--seed", path)
	require.Equal(t, 0, code, h2.err.String())
	assert.Equal(t, "Hello World\n", h2.out.String())
}

func TestInteractiveReceivesSession(t *testing.T) {
	h := newHarness(t)
	var got *session.Session
	h.cli.opts.Interactive = func(sess *session.Session, cfg config.Config, log *logging.Logger) error {
		got = sess
		return nil
	}
	code := h.run("--template", "{{x}}", "--var", "x=1")
	require.Equal(t, 0, code, h.err.String())
	require.NotNil(t, got)
	assert.Equal(t, "1", got.Rendered())
}

func TestVarNameWithBracesRejected(t *testing.T) {
	h := newHarness(t)
	code := h.run("render", "--var", "{x}=1")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.err.String(), "must not contain braces")
}

func TestOneLineCutsOnRuneBoundary(t *testing.T) {
	out := oneLine(strings.Repeat("b", 56) + "ğ\nşçö ıüğ devam eden açıklama")

	assert.True(t, utf8.ValidString(out))
	assert.NotContains(t, out, "\n")
	assert.Equal(t, strings.Repeat("b", 56)+"ğ...", out)
	assert.Equal(t, "short", oneLine("short"))
}
