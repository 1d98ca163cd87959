package cli

import (
	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/lint"
	"github.com/pinfold/pinfold/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the parser and linter over HTTP.

Endpoints:
  GET  /healthz   liveness probe
  POST /v1/parse  parse a manifest body
  POST /v1/lint   lint a manifest body

The server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(server.Config{
				Addr: addr,
				Lint: lint.Config{
					Disable:  c.Config.Lint.Disable,
					Unpinned: c.Config.Lint.Unpinned,
				},
			}, c.Logger)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")

	return cmd
}
