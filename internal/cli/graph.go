package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/graph"
	"github.com/pinfold/pinfold/pkg/render"
	"github.com/pinfold/pinfold/pkg/report"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output string // output file path (stdout if empty)
	format string // dot, svg, png, or json
	labels bool   // annotate edges with specifiers
}

func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Export the include graph of a manifest",
		Long: `Render the graph of files and packages reachable from a manifest.
The JSON format round-trips: a graph exported with --format json can be
rendered later by passing the .json file back to this command.

Examples:
  pinfold graph requirements.txt
  pinfold graph requirements.txt --format svg -o deps.svg
  pinfold graph requirements.txt --format json -o deps.json
  pinfold graph deps.json --format png -o deps.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, or json")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "annotate edges with version specifiers")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, opts graphOpts) error {
	g, err := loadGraph(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("graph loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	switch opts.format {
	case "json":
		return writeOutput(opts.output, func(w io.Writer) error {
			return report.WriteGraphJSON(g, w)
		})
	case "dot":
		return writeOutput(opts.output, func(w io.Writer) error {
			_, err := io.WriteString(w, render.ToDOT(g, render.Options{Labels: opts.labels}))
			return err
		})
	case "svg":
		data, err := render.SVG(cmd.Context(), render.ToDOT(g, render.Options{Labels: opts.labels}))
		if err != nil {
			return err
		}
		return writeBinary(opts.output, data)
	case "png":
		data, err := render.PNG(cmd.Context(), render.ToDOT(g, render.Options{Labels: opts.labels}))
		if err != nil {
			return err
		}
		return writeBinary(opts.output, data)
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid graph format: %q (valid: dot, svg, png, json)", opts.format)
	}
}

// loadGraph builds the graph from a manifest, or reimports a previously
// exported .json graph.
func loadGraph(path string) (*graph.Graph, error) {
	if strings.HasSuffix(path, ".json") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return report.ReadGraphJSON(f)
	}

	set, err := loadSet(path)
	if err != nil {
		return nil, err
	}
	return set.Graph, nil
}

// writeOutput writes text output to the given file, or stdout.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	if err := report.ExportFile(path, write); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// writeBinary writes rendered image bytes. Binary formats require -o.
func writeBinary(path string, data []byte) error {
	if path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "binary formats require --output")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
