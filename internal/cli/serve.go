package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alanmeadows/prharvest/internal/collect"
	"github.com/alanmeadows/prharvest/internal/server"
	"github.com/spf13/cobra"
)

var servePortFlag int

func init() {
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Server port (default from config or 4000)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Run the HTTP service in the foreground until interrupted.

Endpoints:
  POST /fetch-prs  {"repoUrl": "...", "token": "..."}
  GET  /status
  GET  /fetches

Requests without a token are sent to GitHub anonymously unless
server.use_configured_token is true.`,
	Example: `  prharvest serve
  prharvest serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := serverConfig(*appConfig, servePortFlag)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		api := server.NewAPI(buildPipeline(&cfg), collect.NewOutput(cfg.Server.BaseDir))
		return server.RunServer(ctx, &cfg, api)
	},
}
