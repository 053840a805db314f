package comics

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the comic web server",
	Long:  "Serve comic pages, resized images and static assets over HTTP until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("prod") {
			cfg.Prod, _ = cmd.Flags().GetBool("prod")
		}
		warm, _ := cmd.Flags().GetBool("warm")

		srv, err := server.New(controller())
		cobra.CheckErr(err)
		defer srv.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if warm {
			go func() {
				if _, err := srv.Controller().Warmer().Warm(ctx); err != nil {
					logging.Warn("cache warming: %v", err)
				}
			}()
		}

		cobra.CheckErr(srv.ListenAndServe(ctx, cfg.Addr))
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("prod", false, "Production mode: bundled assets and long cache headers")
	serveCmd.Flags().Bool("warm", false, "Resize every comic in the background on startup")
}
