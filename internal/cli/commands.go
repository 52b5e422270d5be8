package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-meta/internal/clipboard"
	"github.com/dpshade/pocket-meta/internal/config"
	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/models"
	"github.com/dpshade/pocket-meta/internal/renderer"
)

func (c *CLI) scanCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the placeholder names in the template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			return formatSlots(cmd.OutOrStdout(), sess.Slots(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, table, json)")
	return cmd
}

func (c *CLI) renderCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Substitute variables into the template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			if missing := sess.Unresolved(); strict && len(missing) > 0 {
				return errors.UnresolvedError(missing).WithDetails(strings.Join(missing, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Rendered())
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a placeholder has no value")
	return cmd
}

func (c *CLI) composeCommand() *cobra.Command {
	var noPack bool
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the rendered template followed by the active pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			out := sess.Combined()
			if noPack {
				out = renderer.Compose(sess.Rendered(), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPack, "no-pack", false, "leave the pack out")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the JSON snapshot of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			data, err := sess.Snapshot()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to encode snapshot")
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeCommandFailed, "Failed to write snapshot").
					WithContext("path", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to a file")
	return cmd
}

func (c *CLI) copyCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the combined output (or the JSON snapshot) to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}

			text := sess.Combined()
			if asJSON {
				data, err := sess.Snapshot()
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to encode snapshot")
				}
				text = string(data)
			}

			res := clipboard.Copy(c.opts.Clipboard, text)
			if !res.Copied {
				// a failed copy never loses the session; report it and keep going
				c.log.Warn("copy failed", "error", res.Err)
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", res.Status)
				if !clipboard.IsClipboardAvailable() {
					fmt.Fprintln(cmd.ErrOrStderr(), clipboard.GetInstallInstructions())
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "copy the JSON snapshot instead")
	return cmd
}

func (c *CLI) packsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "Inspect directive packs",
	}
	cmd.PersistentFlags().StringVar(&format, "format", "table", "output format (table, json)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			active := ""
			if rec := sess.ActivePack(); rec != nil {
				active = rec.ID
			}
			return formatPacks(cmd.OutOrStdout(), sess.Packs(), active, format)
		},
	}

	find := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search packs by name and pack name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			results := sess.FindPacks(args[0])
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No packs match %q\n", args[0])
				return nil
			}
			return formatPacks(cmd.OutOrStdout(), results, "", format)
		},
	}

	show := &cobra.Command{
		Use:   "show [id|pack-name]",
		Short: "Show one pack as it appears in the combined output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.buildSession()
			if err != nil {
				return err
			}
			rec := sess.ActivePack()
			if len(args) == 1 {
				found, err := sess.ResolvePack(args[0])
				if err != nil {
					return err
				}
				rec = found
			}
			if rec == nil {
				return errors.NotFoundError("active pack")
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderer.FormatPack(rec))
			return nil
		},
	}

	cmd.AddCommand(list, find, show)
	return cmd
}

func (c *CLI) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the seed in effect as YAML",
		Long:  "Print the seed in effect as YAML. Redirect it to a file and pass it back with --seed to start from an edited copy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := config.LoadSeed(c.cfg.SeedFile)
			if err != nil {
				return err
			}
			data, err := seed.Marshal()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to encode seed")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func formatSlots(w io.Writer, slots []models.Slot, format string) error {
	switch format {
	case "json":
		return writeJSON(w, slots)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tRESOLVED\tVALUE")
		for _, s := range slots {
			fmt.Fprintf(tw, "%s\t%t\t%s\n", s.Name, s.Resolved, oneLine(s.Value))
		}
		return tw.Flush()
	default:
		for _, s := range slots {
			fmt.Fprintln(w, s.Name)
		}
		return nil
	}
}

func formatPacks(w io.Writer, records []models.PackRecord, activeID, format string) error {
	switch format {
	case "json":
		return writeJSON(w, records)
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tPACK NAME\tNAME\tGOAL")
		for _, rec := range records {
			marker := ""
			if rec.ID == activeID {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, rec.ID, rec.PackName, rec.Name, oneLine(rec.Goal))
		}
		return tw.Flush()
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func oneLine(s string) string {
	return ansi.Truncate(strings.ReplaceAll(s, "\n", " "), 60, "...")
}
