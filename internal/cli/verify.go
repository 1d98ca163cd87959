package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/registry/pypi"
	"github.com/pinfold/pinfold/pkg/report"
	"github.com/pinfold/pinfold/pkg/verify"
)

// defaultVerifyTTL is how long registry responses are cached.
const defaultVerifyTTL = 24 * time.Hour

// verifyOpts holds the command-line flags for the verify command.
type verifyOpts struct {
	output  string // output file path (stdout if empty)
	format  string // text or json
	refresh bool   // bypass the cache
	noCache bool   // disable the cache entirely
}

func (c *CLI) verifyCommand() *cobra.Command {
	opts := verifyOpts{format: "text"}

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check declared packages against PyPI",
		Long: `Verify that every named requirement exists on PyPI and that its
version range matches at least one published release. Registry responses
are cached for 24 hours; use --refresh to bypass the cache.

Examples:
  pinfold verify requirements.txt
  pinfold verify requirements.txt --refresh
  pinfold verify requirements.txt --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text or json")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")

	return cmd
}

func (c *CLI) runVerify(cmd *cobra.Command, path string, opts verifyOpts) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	set, err := loadSet(path)
	if err != nil {
		return err
	}

	backend, err := c.newCache(cmd, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	ttl := c.Config.Cache.TTL.Duration
	if ttl == 0 {
		ttl = defaultVerifyTTL
	}
	client := pypi.NewClient(backend, ttl)
	if url := c.Config.Registry.URL; url != "" {
		if err := errors.ValidateURL(url); err != nil {
			return err
		}
		client = client.WithBaseURL(url)
	}

	start := time.Now()
	results, err := verify.Run(cmd.Context(), client, set, verify.Options{Refresh: opts.refresh})
	if err != nil {
		return err
	}
	c.Logger.Debug("verify finished",
		"results", len(results),
		"duration", time.Since(start))

	if opts.format == "json" {
		if opts.output != "" {
			if err := report.ExportFile(opts.output, func(w io.Writer) error {
				return report.WriteVerifyJSON(set.Root, results, w)
			}); err != nil {
				return err
			}
			printFile(opts.output)
		} else if err := report.WriteVerifyJSON(set.Root, results, os.Stdout); err != nil {
			return err
		}
		return verifyStatus(results)
	}

	printVerifyText(set.Root, results)
	return verifyStatus(results)
}

func verifyStatus(results []verify.Result) error {
	if verify.Failed(results) {
		return errors.New(errors.ErrCodePackageNotFound, "verification failed")
	}
	return nil
}

func printVerifyText(root string, results []verify.Result) {
	printInfo("%s", displayRoot(root))
	printNewline()

	ok := 0
	for _, r := range results {
		switch r.Status {
		case verify.StatusOK:
			ok++
			detail := ""
			if r.Latest != "" {
				detail = " " + StyleDim.Render("latest "+r.Latest)
			}
			printSuccess("%s%s", r.Name, detail)
		case verify.StatusSkipped:
			printDetail("%s skipped", r.Name)
		case verify.StatusNotFound:
			printError("%s not on the registry", r.Name)
		case verify.StatusNoMatch:
			printError("%s: %s", r.Name, r.Message)
		default:
			printWarning("%s: %s", r.Name, r.Message)
		}
	}

	printNewline()
	printDetail("%d of %d packages verified", ok, len(results))
}
