// Command graphdb is the CLI entry point: open a store, run ad hoc
// queries, export/import its contents, and inspect its statistics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cypherlabs/cygraph/pkg/config"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphdb",
		Short: "graphdb - an embeddable property-graph store with an openCypher subset",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphdb v%s\n", version)
		},
	})

	openCmd := &cobra.Command{
		Use:   "open [query]",
		Short: "Open a store and optionally run a single query against it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOpen,
	}
	openCmd.Flags().String("data-dir", "", "durable store directory (empty for in-memory)")
	openCmd.Flags().String("config", "", "path to a YAML config file")
	rootCmd.AddCommand(openCmd)

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive Cypher shell",
		RunE:  runShell,
	}
	shellCmd.Flags().String("data-dir", "", "durable store directory (empty for in-memory)")
	shellCmd.Flags().String("config", "", "path to a YAML config file")
	rootCmd.AddCommand(shellCmd)

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a store's contents as a JSON interchange document",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().String("data-dir", "", "durable store directory to export")
	rootCmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a JSON interchange document into a store",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().String("data-dir", "", "durable store directory to import into")
	rootCmd.AddCommand(importCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a store's running statistics",
		RunE:  runStats,
	}
	statsCmd.Flags().String("data-dir", "", "durable store directory to inspect")
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves a Config from --config if given, else from the
// environment, then lets --data-dir override whichever one the flag was
// explicitly given for.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadFromEnv()
	}

	if cmd.Flags().Changed("data-dir") {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		cfg.Database.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
