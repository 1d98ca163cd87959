package cli

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/lint"
	"github.com/pinfold/pinfold/pkg/report"
)

// lintOpts holds the command-line flags for the lint command.
type lintOpts struct {
	output      string   // output file path (stdout if empty)
	format      string   // text or json
	disable     []string // rule IDs to skip
	unpinned    bool     // enable the unpinned advisory rule
	failOn      string   // severity threshold for the exit status
	interactive bool     // browse findings in a TUI
}

func (c *CLI) lintCommand() *cobra.Command {
	opts := lintOpts{format: "text"}

	cmd := &cobra.Command{
		Use:   "lint <file>",
		Short: "Check a manifest for conflicts and marker problems",
		Long: `Lint a requirements manifest. The linter reports syntax errors,
conflicting version ranges for the same package, duplicate declarations,
environment-marker splits that overlap or leave gaps, and VCS
requirements without a pinned ref.

The command exits non-zero when any error-severity finding remains;
--fail-on lowers that threshold to warnings or infos.

Examples:
  pinfold lint requirements.txt
  pinfold lint requirements.txt dev-requirements.txt
  pinfold lint requirements.txt --disable vcs-no-ref
  pinfold lint requirements.txt --fail-on warning
  pinfold lint requirements.txt --unpinned --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLint(args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text or json")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "rule IDs to skip")
	cmd.Flags().BoolVar(&opts.unpinned, "unpinned", false, "flag dependencies without an exact pin")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "severity that makes the exit status non-zero (info, warning, error)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse findings interactively")

	return cmd
}

func (c *CLI) runLint(paths []string, opts lintOpts) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	failOn := lint.SeverityError
	if name := firstNonEmpty(opts.failOn, c.Config.Lint.FailOn); name != "" {
		var err error
		if failOn, err = lint.ParseSeverity(name); err != nil {
			return err
		}
	}

	cfg := lint.Config{
		Disable:  c.Config.Lint.Disable,
		Unpinned: c.Config.Lint.Unpinned,
	}
	if len(opts.disable) > 0 {
		cfg.Disable = opts.disable
	}
	if opts.unpinned {
		cfg.Unpinned = true
	}

	start := time.Now()
	rep := &lint.Report{}
	roots := make([]string, 0, len(paths))
	for _, path := range paths {
		set, err := loadSet(path)
		if err != nil {
			return err
		}
		roots = append(roots, set.Root)
		rep.Findings = append(rep.Findings, lint.Run(set, cfg).Findings...)
	}
	rep.Sort()
	c.Logger.Debug("lint finished",
		"files", len(paths),
		"findings", len(rep.Findings),
		"duration", time.Since(start))

	if opts.format == "json" {
		if opts.output != "" {
			if err := report.ExportFile(opts.output, func(w io.Writer) error {
				return report.WriteLintJSON(roots, rep, w)
			}); err != nil {
				return err
			}
			printFile(opts.output)
		} else if err := report.WriteLintJSON(roots, rep, os.Stdout); err != nil {
			return err
		}
		return lintStatus(rep, failOn)
	}

	if opts.interactive && len(rep.Findings) > 0 {
		model := NewFindingListModel(displayRoot(roots[0]), rep.Findings)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
		return lintStatus(rep, failOn)
	}

	printLintText(roots, rep)
	return lintStatus(rep, failOn)
}

// lintStatus converts findings at or above the threshold into a
// non-zero exit.
func lintStatus(rep *lint.Report, failOn lint.Severity) error {
	if rep.HasSeverity(failOn) {
		errs, warns, infos := rep.Counts()
		count := errs
		if failOn <= lint.SeverityWarning {
			count += warns
		}
		if failOn == lint.SeverityInfo {
			count += infos
		}
		return errors.New(errors.ErrCodeInvalidManifest, "%d lint findings at or above %s", count, failOn)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printLintText(roots []string, rep *lint.Report) {
	for _, root := range roots {
		printInfo("%s", displayRoot(root))
	}
	printNewline()

	if len(rep.Findings) == 0 {
		printSuccess("no problems found")
		return
	}

	for _, f := range rep.Findings {
		printFinding(f)
	}

	printNewline()
	errs, warns, infos := rep.Counts()
	printLintSummary(errs, warns, infos)
}
