// Command ferret builds, queries, and serves the boolean-model
// information-retrieval engine implemented by the github.com/ferretir/ferret
// package.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ferretir/ferret/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
)

func main() {
	root := &cobra.Command{
		Use:   "ferret",
		Short: "A boolean-model information-retrieval engine",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	cobra.OnInitialize(loadConfig)

	root.AddCommand(newCreateIndexCmd())
	root.AddCommand(newLoadIndexCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func loadConfig() {
	if cfgPath == "" {
		cfg = config.Default()
		return
	}
	loaded, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg = loaded
}
