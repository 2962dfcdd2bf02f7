package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/render"
)

var renderValidate = validator.New()

var (
	renderOutput string
	renderView   string
	renderDetail string
	renderWatch  bool
)

// RenderOptions is the flag-derived shape validated before a render runs.
type RenderOptions struct {
	Detail string `validate:"oneof=tables pk pk_fk all"`
}

var renderCmd = &cobra.Command{
	Use:   "render <input | ->",
	Short: "Render a schema to SVG",
	Long: `Render lays out a schema and writes its SVG rendering.

Examples:
  diagtool render schema.erd -o schema.svg
  diagtool render schema.erd -v core
  diagtool render schema.erd -d all
  cat schema.erd | diagtool render - -o schema.svg
  diagtool render schema.erd --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file path (default: input name with .svg extension, stdout for -)")
	renderCmd.Flags().StringVarP(&renderView, "view", "v", "", "restrict rendering to the named view")
	renderCmd.Flags().StringVarP(&renderDetail, "detail", "d", "pk_fk", "column detail: tables, pk, pk_fk, all")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "watch the input file and re-render on changes")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := renderValidate.Struct(RenderOptions{Detail: renderDetail}); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	inputFile := args[0]
	outPath := resolveRenderOutput(inputFile, renderOutput)

	if !renderWatch {
		return doRender(inputFile, outPath)
	}
	return runRenderWatch(inputFile, outPath)
}

func resolveRenderOutput(inputFile, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if inputFile == "-" {
		return "-"
	}
	base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return base + ".svg"
}

func doRender(inputFile, outPath string) error {
	content, err := readInput(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	schema, err := dsl.Parse(content)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	detail, ok := ir.ParseDetailLevel(renderDetail)
	if !ok {
		return fmt.Errorf("unknown detail level: %s", renderDetail)
	}

	graph := ir.FromSchema(schema, renderView, detail)
	if err := graph.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	r := render.NewSVGRenderer()
	svg, err := r.RenderToBytes(context.Background(), graph)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return writeOutput(outPath, svg)
}

func readInput(path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(os.Stdin)
		return string(content), err
	}
	content, err := os.ReadFile(path)
	return string(content), err
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// runRenderWatch re-renders inputFile to outPath whenever it changes on
// disk, debouncing rapid successive writes the way pkg/server does.
func runRenderWatch(inputFile, outPath string) error {
	logger := hclog.New(&hclog.LoggerOptions{Name: "diagtool-render", Level: hclog.Info})

	absPath, err := filepath.Abs(inputFile)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("watching for changes", "file", inputFile)
	if err := doRender(inputFile, outPath); err != nil {
		logger.Error("render failed", "err", err)
	} else {
		logger.Info("rendered", "in", inputFile, "out", outPath)
	}

	var debounceTimer *time.Timer
	const debounceDelay = 100 * time.Millisecond
	baseName := filepath.Base(absPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := doRender(inputFile, outPath); err != nil {
					logger.Error("render failed", "err", err)
				} else {
					logger.Info("rendered", "in", inputFile, "out", outPath)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)

		case <-sigChan:
			return nil
		}
	}
}
