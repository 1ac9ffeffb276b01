package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cypherlabs/cygraph/pkg/config"
	"github.com/cypherlabs/cygraph/pkg/graphdb"
	"github.com/cypherlabs/cygraph/pkg/interchange"
	"github.com/cypherlabs/cygraph/pkg/value"
)

func openHandle(cfg *config.Config) (*graphdb.Handle, error) {
	return graphdb.OpenWithOptions(graphdb.Options{
		DataDir:              cfg.Database.DataDir,
		SyncWrites:           cfg.Database.SyncWrites,
		LowMemory:            cfg.Database.LowMemory,
		EncryptionPassphrase: cfg.Database.EncryptionPassphrase,
	})
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := openHandle(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	if len(args) == 0 {
		fmt.Println("opened store, no query given")
		return nil
	}
	result, err := h.Execute(args[0], nil)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := openHandle(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	fmt.Println("graphdb shell — type a Cypher statement, or 'exit'/'quit' to leave")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("graphdb> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := h.Execute(line, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printResult(result)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	h, err := graphdb.OpenWithOptions(graphdb.Options{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer h.Close()

	doc, err := h.Export()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Printf("exported %d nodes, %d edges to %s\n", len(doc.Nodes), len(doc.Edges), args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	h, err := graphdb.OpenWithOptions(graphdb.Options{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer h.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var doc interchange.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	nodes, edges, err := h.Import(&doc)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d nodes, %d edges from %s\n", nodes, edges, args[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	h, err := graphdb.OpenWithOptions(graphdb.Options{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer h.Close()

	stats := h.Stats()
	fmt.Printf("nodes: %d\n", stats.TotalNodes)
	fmt.Printf("edges: %d\n", stats.TotalEdges)

	labels := make([]string, 0, len(stats.NodeCountsByLabel))
	for l := range stats.NodeCountsByLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("  label %-20s %d\n", l, stats.NodeCountsByLabel[l])
	}

	types := make([]string, 0, len(stats.EdgeCountsByType))
	for t := range stats.EdgeCountsByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  type  %-20s %d (avg degree %.2f)\n", t, stats.EdgeCountsByType[t], stats.AvgDegreeByType[t])
	}
	return nil
}

func printResult(result *graphdb.Result) {
	if len(result.Columns) == 0 {
		fmt.Println("(no columns)")
		return
	}
	fmt.Println(strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		cells := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			cells[i] = fmt.Sprintf("%v", value.ToNative(row[col]))
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d rows)\n", len(result.Rows))
}
