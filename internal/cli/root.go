package cli

import (
	"fmt"
	"os"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/config"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cellimage",
	Short: "Slice images into terminal grid cells",
	Long: `cellimage places an image on a grid of terminal cells, cuts it into
per-cell slices and packs them into a texture atlas, the way a terminal
emulator renders inline graphics.

Examples:
  cellimage slice photo.png --cols 20 --rows 10 -o atlas.png
  cellimage preview photo.png --resize ResizeToFill`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cellimage %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: XDG config, then ./cellimage.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error, off)")
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by the global flags and
// installs its logger.
func loadConfig() (*config.Config, error) {
	paths := config.DefaultPaths()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		paths = []string{configPath}
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	cellimage.SetLogger(cfg.Logger())
	return cfg, nil
}
