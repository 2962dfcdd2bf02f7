package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/server"
)

var (
	servePort   int
	serveView   string
	serveDetail string
)

var serveCmd = &cobra.Command{
	Use:   "serve <input>",
	Short: "Serve a live preview that reloads on save",
	Long: `Serve starts a local HTTP server that renders the given schema file to
SVG on request and pushes a reload notice over a websocket whenever the
file changes on disk.

Examples:
  diagtool serve schema.erd
  diagtool serve schema.erd --port 3000`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringVarP(&serveView, "view", "v", "", "restrict rendering to the named view")
	serveCmd.Flags().StringVarP(&serveDetail, "detail", "d", "pk_fk", "column detail: tables, pk, pk_fk, all")
}

func runServe(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	detail, ok := ir.ParseDetailLevel(serveDetail)
	if !ok {
		return fmt.Errorf("unknown detail level: %s", serveDetail)
	}

	srv, err := server.New(server.Options{
		Port:     servePort,
		FilePath: filePath,
		View:     serveView,
		Detail:   detail,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	fmt.Printf("Serving %s at http://localhost:%d (Ctrl+C to stop)\n", filePath, servePort)
	return srv.Start(ctx)
}
