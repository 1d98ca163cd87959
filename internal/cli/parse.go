package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/report"
)

// validateFormat checks the --format flag value.
func validateFormat(format string) error {
	return errors.ValidateOutputFormat(format)
}

// loadSet expands a manifest from disk. pyproject.toml files are parsed
// from their dependency tables; everything else is treated as a pip
// requirements file with -r/-c includes.
func loadSet(path string) (*manifest.Set, error) {
	if filepath.Base(path) == "pyproject.toml" {
		return manifest.ExpandPyProject(path)
	}
	return manifest.Expand(path)
}

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output string // output file path (stdout if empty)
	format string // text or json
}

func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: "text"}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a requirements manifest and list its contents",
		Long: `Parse a pip requirements file (or pyproject.toml), follow its -r/-c
includes, and list every requirement found.

Examples:
  pinfold parse requirements.txt
  pinfold parse pyproject.toml
  pinfold parse requirements.txt --format json -o manifest.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text or json")

	return cmd
}

func (c *CLI) runParse(path string, opts parseOpts) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	set, err := loadSet(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("manifest expanded",
		"files", len(set.Files),
		"requirements", len(set.Requirements),
		"problems", len(set.Problems))

	if opts.format == "json" {
		if opts.output != "" {
			if err := report.ExportFile(opts.output, func(w io.Writer) error {
				return report.WriteParseJSON(set, w)
			}); err != nil {
				return err
			}
			printFile(opts.output)
			return nil
		}
		return report.WriteParseJSON(set, os.Stdout)
	}

	printParseText(set)
	return nil
}

// printParseText renders the expanded set for the terminal.
func printParseText(set *manifest.Set) {
	printInfo("%s", displayRoot(set.Root))
	if len(set.Files) > 1 {
		printDetail("%d files after expanding includes", len(set.Files))
	}
	printNewline()

	for _, req := range set.Requirements {
		name := req.DisplayName()
		if name == "" {
			name = req.URL
		}

		line := "  " + StyleValue.Render(name)
		if s := req.Specifiers.String(); s != "" {
			line += " " + StyleHighlight.Render(s)
		}
		if req.MarkerText != "" {
			line += " " + StyleDim.Render("; "+req.MarkerText)
		}
		if req.Constraint {
			line += " " + StyleDim.Render("(constraint)")
		}
		fmt.Println(line)
	}

	printNewline()
	if len(set.Problems) > 0 {
		printWarning("%d problems", len(set.Problems))
		for _, p := range set.Problems {
			printDetail("%s:%d %s", displayRoot(p.File), p.Line, p.Message)
		}
		printNewline()
	}
	printSuccess("%d requirements", len(set.Requirements))
	printNextStep("Lint this manifest", "pinfold lint "+displayRoot(set.Root))
}

// displayRoot shortens an absolute path for display.
func displayRoot(path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && len(rel) < len(path) {
			return rel
		}
	}
	return path
}
