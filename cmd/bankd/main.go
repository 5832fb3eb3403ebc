// Command bankd runs the bank API server and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/pkg/configpkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "bankd",
	Short:         "bankd serves the multi-role bank API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs", "directory holding app.env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionCmd)
}

// setup loads the configuration and builds the root logger.
func setup() (configpkg.Config, zerolog.Logger, error) {
	config, err := configpkg.Load(configPath)
	if err != nil {
		return config, zerolog.Nop(), errors.Wrap(err, "cannot load config")
	}

	return config, middleware.GetLogger(config), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
