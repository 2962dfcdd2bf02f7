// Package cmd provides the CLI commands for diagtool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "1.0.0"
	BuildDate = "2026-07-29"
	GitCommit = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "diagtool",
	Short: "ER schema diagram tool - lay out and render entity-relationship schemas",
	Long: `diagtool turns a compact entity-relationship DSL (or an existing SQL
dump) into a deterministically laid-out SVG diagram.

Examples:
  # Render a schema to SVG
  diagtool render schema.erd -o schema.svg

  # Render only a named view, with full column detail
  diagtool render schema.erd -v core -d all

  # Validate a schema without rendering it
  diagtool validate schema.erd

  # Convert a SQL dump into the DSL
  diagtool convert dump.sql -o schema.erd

  # Serve a live preview that reloads on save
  diagtool serve schema.erd`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// ExitWithError prints an error message to stderr and exits with code 1,
// the contract every subcommand's failure path funnels into.
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
