package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagekit-db/pagekit/store"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "pagectl",
	Short: "Inspect and manipulate pagekit store files",
	Long: `pagectl is a tool for inspecting and manipulating pagekit store files.
It reports the page layout, lists registered tables with their ledgers, and
manages the access control list stored in the file.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the store file and wraps it in a manager. The caller must
// close the returned provider.
func openStore(path string) (*store.FileProvider, *store.Manager, error) {
	printVerbose("Opening store: %s\n", path)
	p, err := store.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := store.NewManager(p)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return p, m, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
