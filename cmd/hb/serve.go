package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/record"
	"github.com/hitboard/hitboard/internal/server"
)

var (
	serveAddr    string
	serveNoIndex bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from the config)")
	serveCmd.Flags().BoolVar(&serveNoIndex, "no-index", false, "Do not build the option index")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive charts over HTTP",
	Long: `Serve every chart whose dataset loads as an interactive HTML page.
Clicking a platform, genre or leaderboard bar selects it; query parameters
carry the full selection, so every view is a shareable URL.

Routes:
  /charts/{chart}                    HTML page
  /api/charts/{chart}                JSON scene
  /api/charts/{chart}/svg            SVG image
  /api/charts/leaderboard/frames/{i} leaderboard frame i
  /api/options                       filter options
  /api/correlations                  feature/platform correlations
  /metrics                           Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		data := loadAll(cfg)
		charts, err := data.charts(cfg)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}

		opts := []server.Option{server.WithAllowedOrigins(cfg.Server.AllowedOrigins)}
		if data.songs != nil {
			opts = append(opts, server.WithCorrelations(
				aggregate.PlatformFeatureMatrix(data.songs.Records, record.Platforms, record.AudioFeatures)))
		}
		if !serveNoIndex {
			resp, err := buildOptions(cfg, data, false)
			if err != nil {
				slog.Warn("option index unavailable", slog.String("error", err.Error()))
			} else {
				opts = append(opts, server.WithOptions(resp.Options))
			}
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if humanOutput {
			outputHuman("Serving %d charts on http://%s\n", len(charts), addr)
		}
		return server.New(charts, opts...).Run(ctx, addr)
	},
}
