// Package cli wires the cobra command tree: headless commands that scan, render,
// compose, export and copy a meta prompt, plus the interactive editor as the default.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dpshade/pocket-meta/internal/clipboard"
	"github.com/dpshade/pocket-meta/internal/config"
	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/logging"
	"github.com/dpshade/pocket-meta/internal/models"
	"github.com/dpshade/pocket-meta/internal/session"
	"github.com/dpshade/pocket-meta/internal/validation"
)

var version = "0.1.0"

// Interactive starts the interactive editor for a prepared session.
type Interactive func(sess *session.Session, cfg config.Config, log *logging.Logger) error

// Options configures a CLI. Zero values fall back to the process defaults.
type Options struct {
	Out         io.Writer
	Err         io.Writer
	Clipboard   clipboard.Writer
	Interactive Interactive
	Viper       *viper.Viper
}

// CLI holds the state shared by every command of one invocation.
type CLI struct {
	opts Options
	v    *viper.Viper

	cfg        config.Config
	log        *logging.Logger
	errHandler *errors.CLIErrorHandler

	cfgFile      string
	seedFile     string
	templateText string
	templateFile string
	vars         []string
	packRef      string
	verbose      bool
}

// NewCLI creates a CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.Default(opts.Err)
	}
	if opts.Viper == nil {
		opts.Viper = viper.New()
	}
	return &CLI{
		opts:       opts,
		v:          opts.Viper,
		log:        logging.Nop(),
		errHandler: errors.NewCLIErrorHandler(false, nil),
	}
}

// Execute runs the command tree with args and returns the process exit code.
func (c *CLI) Execute(args []string) int {
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.Execute()
	c.log.Sync()
	if err != nil {
		fmt.Fprintln(c.opts.Err, c.errHandler.HandleError(err))
		return 1
	}
	return 0
}

// RootCommand builds the full command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pocket-meta",
		Short: "Compose meta prompts from templates, variables and directive packs",
		Long: `pocket-meta composes a parameterized meta prompt.

Write a template containing {{ name }} placeholders, give each placeholder a value,
pick one directive pack, and get back the combined text plus a JSON snapshot.

Run without a command to open the interactive editor.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runInteractive,
	}
	root.SetOut(c.opts.Out)
	root.SetErr(c.opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml or ~/.pocket-meta/config.yaml)")
	flags.StringVar(&c.seedFile, "seed", "", "seed file with template, variables and packs")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&c.templateText, "template", "t", "", "template text (overrides the seed)")
	flags.StringVarP(&c.templateFile, "template-file", "f", "", "read the template from a file")
	flags.StringArrayVar(&c.vars, "var", nil, "set a variable as name=value (repeatable)")
	flags.StringVarP(&c.packRef, "pack", "p", "", "select a pack by id or pack name")
	flags.BoolVar(&c.verbose, "verbose", false, "show error causes")
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("seed_file", flags.Lookup("seed"))

	root.AddCommand(
		c.scanCommand(),
		c.renderCommand(),
		c.composeCommand(),
		c.exportCommand(),
		c.copyCommand(),
		c.packsCommand(),
		c.seedCommand(),
	)
	return root
}

// setup loads configuration and the logger before any command runs.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logOpts := logging.Options{Mode: cfg.LogMode, Level: cfg.LogLevel}
	if cmd == cmd.Root() && cfg.LogPath() != "" {
		// the screen belongs to the editor in interactive mode
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath()), 0o755); err == nil {
			logOpts.OutputPaths = []string{cfg.LogPath()}
		}
	}

	log, err := logging.New(logOpts)
	if err != nil {
		return errors.ConfigError("init logger", err)
	}
	c.log = log
	c.errHandler = errors.NewCLIErrorHandler(c.verbose, log)
	return nil
}

// buildSession assembles a session from the seed and the input flags.
func (c *CLI) buildSession() (*session.Session, error) {
	seed, err := config.LoadSeed(c.cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	for _, w := range seed.Warnings {
		c.log.Warn("seed warning", "file", c.cfg.SeedFile, "warning", w)
	}

	template := seed.Template
	switch {
	case c.templateFile != "":
		data, err := os.ReadFile(c.templateFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "Cannot read template file").
				WithContext("path", c.templateFile)
		}
		template = string(data)
	case c.templateText != "":
		template = c.templateText
	}

	registry, err := seed.Registry()
	if err != nil {
		return nil, errors.ConfigError("load packs", err)
	}

	sess := session.New(template, models.Variables(seed.Variables), registry, c.log)

	if c.packRef != "" {
		rec, err := sess.ResolvePack(c.packRef)
		if err != nil {
			return nil, err
		}
		if err := sess.SelectPack(rec.ID); err != nil {
			return nil, err
		}
	}

	assignments, err := parseVars(c.vars)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		sess.SetVariable(a.name, a.value)
	}

	return sess, nil
}

type assignment struct {
	name  string
	value string
}

// parseVars reads name=value pairs, keeping their order.
func parseVars(raw []string) ([]assignment, error) {
	out := make([]assignment, 0, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.ValidationError(fmt.Sprintf("invalid --var %q, expected name=value", kv))
		}
		if err := validation.ValidateVariableName(name); err != nil {
			return nil, err
		}
		out = append(out, assignment{name: name, value: value})
	}
	return out, nil
}

func (c *CLI) runInteractive(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.InvalidCommandError(args[0], "unknown command")
	}
	if c.opts.Interactive == nil {
		return errors.InvalidCommandError("pocket-meta", "interactive mode is not available")
	}
	sess, err := c.buildSession()
	if err != nil {
		return err
	}
	return c.opts.Interactive(sess, c.cfg, c.log)
}
