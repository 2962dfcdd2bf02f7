package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/mark/erd-diagram-tool/pkg/ir"
)

var (
	validateView    string
	validateDetail  string
	validateVerbose bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <input | ->",
	Short: "Validate a schema without rendering it",
	Long: `Validate parses a schema and checks it for duplicate entity names
without producing an SVG. Relationships whose endpoints fall outside the
selected entities are dropped, not reported; foreign-key targets and view
members are not checked. Errors are printed to stderr and exit 1.

Examples:
  diagtool validate schema.erd
  diagtool validate schema.erd -v`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateView, "view", "", "validate as restricted to the named view")
	validateCmd.Flags().StringVarP(&validateDetail, "detail", "d", "all", "column detail: tables, pk, pk_fk, all")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "show detailed output on success")
}

func runValidate(cmd *cobra.Command, args []string) error {
	content, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	schema, err := dsl.Parse(content)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	detail, ok := ir.ParseDetailLevel(validateDetail)
	if !ok {
		return fmt.Errorf("unknown detail level: %s", validateDetail)
	}

	graph := ir.FromSchema(schema, validateView, detail)
	if err := graph.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation errors in %s:\n", args[0])
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
		return fmt.Errorf("schema is invalid")
	}

	if validateVerbose {
		fmt.Printf("valid: %s\n", args[0])
		fmt.Printf("  entities: %d\n", len(schema.Entities))
		fmt.Printf("  relationships: %d\n", len(schema.Relationships))
		fmt.Printf("  nodes (after view/detail filtering): %d\n", len(graph.Nodes))
	} else {
		fmt.Printf("valid: %s (%d entities, %d relationships)\n",
			args[0], len(schema.Entities), len(schema.Relationships))
	}

	return nil
}
