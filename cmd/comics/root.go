package comics

import (
	"fmt"
	"os"

	"github.com/kerbaras/comics/pkg/app"
	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "comics",
	Short: "A small web comic server",
	Long:  "Serve, browse and export a web comic archive from a JSON index and a folder of images",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Debug = true
		}
		return logging.Setup(cfg.LogFile, cfg.Debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		runReader("")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", fmt.Sprintf("Config file (default %s when present)", config.DefaultPath))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(epubCmd)
	rootCmd.AddCommand(readCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func controller() *services.ComicController {
	ctrl, err := services.NewComicController(cfg)
	cobra.CheckErr(err)
	return ctrl
}

func runReader(slug string) {
	ctrl := controller()
	if slug != "" {
		if _, ok := ctrl.Index().Find(slug); !ok {
			cobra.CheckErr(fmt.Errorf("no comic with slug %q", slug))
		}
	}
	logging.Quiet()
	cobra.CheckErr(app.NewApp(ctrl, slug).Run())
}
