package cmd

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/mark/erd-diagram-tool/pkg/sqladapter"
)

var convertValidate = validator.New()

var (
	convertOutput  string
	convertDialect string
)

// ConvertOptions is the flag-derived shape validated before a conversion
// runs.
type ConvertOptions struct {
	Dialect string `validate:"oneof=auto generic postgres mysql"`
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.sql | ->",
	Short: "Convert a SQL dump into the schema DSL",
	Long: `Convert parses CREATE TABLE / ALTER TABLE statements from a SQL dump
and emits the equivalent schema DSL source.

Examples:
  diagtool convert dump.sql -o schema.erd
  diagtool convert dump.sql -d postgres
  cat dump.sql | diagtool convert - -o schema.erd`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file path (default: stdout)")
	convertCmd.Flags().StringVarP(&convertDialect, "dialect", "d", "auto", "SQL dialect: auto, generic, postgres, mysql")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := convertValidate.Struct(ConvertOptions{Dialect: convertDialect}); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	dialect, ok := sqladapter.ParseDialect(convertDialect)
	if !ok {
		return fmt.Errorf("unknown dialect: %s", convertDialect)
	}

	content, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	schema, err := sqladapter.Parse(content, dialect)
	if err != nil {
		return fmt.Errorf("sql parse error: %w", err)
	}

	source := dsl.Serialize(schema)

	if convertOutput == "" || convertOutput == "-" {
		_, err := os.Stdout.WriteString(source)
		return err
	}
	return os.WriteFile(convertOutput, []byte(source), 0644)
}
