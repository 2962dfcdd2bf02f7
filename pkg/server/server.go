// Package server provides a read-only live-preview HTTP server: it renders
// the current schema file to SVG on request and pushes a reload notice over
// a websocket whenever the file changes on disk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/render"
)

// debounceDelay coalesces rapid successive writes (editors that write a file
// in several small operations) into a single re-render.
const debounceDelay = 100 * time.Millisecond

// Options configures the server.
type Options struct {
	Port     int
	FilePath string
	View     string
	Detail   ir.DetailLevel
}

// Server is the diagram live-preview HTTP server.
type Server struct {
	port     int
	filePath string
	view     string
	detail   ir.DetailLevel
	logger   hclog.Logger

	httpServer *http.Server
	watcher    *fsnotify.Watcher

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	fileContent   string
	fileContentMu sync.RWMutex
}

// New creates a server for opts.FilePath, loading its initial content.
func New(opts Options) (*Server, error) {
	if opts.Port == 0 {
		opts.Port = 8080
	}

	absPath, err := filepath.Abs(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Server{
		port:        opts.Port,
		filePath:    absPath,
		view:        opts.View,
		detail:      opts.Detail,
		logger:      hclog.New(&hclog.LoggerOptions{Name: "diagtool-serve", Level: hclog.Info}),
		clients:     make(map[*websocket.Conn]bool),
		fileContent: string(content),
	}, nil
}

// Start serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/svg", s.handleSVG)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleIndex)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	if err := s.startFileWatcher(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr, "file", s.filePath)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the file watcher, closes client connections, and shuts down
// the HTTP server.
func (s *Server) Shutdown() error {
	if s.watcher != nil {
		s.watcher.Close()
	}

	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close(websocket.StatusNormalClosure, "server shutting down")
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) startFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return err
	}

	go s.watchFileChanges()
	return nil
}

func (s *Server) watchFileChanges() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, s.handleFileChanged)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", "err", err)
		}
	}
}

func (s *Server) handleFileChanged() {
	content, err := os.ReadFile(s.filePath)
	if err != nil {
		s.logger.Error("failed to read changed file", "err", err)
		return
	}

	newContent := string(content)

	s.fileContentMu.Lock()
	changed := newContent != s.fileContent
	s.fileContent = newContent
	s.fileContentMu.Unlock()

	if !changed {
		return
	}

	s.broadcast([]byte(`{"type":"reload"}`))
}

func (s *Server) broadcast(msg []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for conn := range s.clients {
		_ = conn.Write(ctx, websocket.MessageText, msg)
	}
}

// renderCurrentSVG parses the cached source and renders it to SVG under the
// server's configured view/detail.
func (s *Server) renderCurrentSVG(ctx context.Context) ([]byte, error) {
	s.fileContentMu.RLock()
	source := s.fileContent
	s.fileContentMu.RUnlock()

	schema, err := dsl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	graph := ir.FromSchema(schema, s.view, s.detail)
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	r := render.NewSVGRenderer()
	return r.RenderToBytes(ctx, graph)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.renderCurrentSVG(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.CloseNow()
	}()

	// Block until the client disconnects; reloads are pushed from
	// handleFileChanged, not in response to anything the client sends.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>diagtool preview</title></head>
<body style="margin:0">
<img id="diagram" src="/api/svg" style="width:100%;height:100%;object-fit:contain"/>
<script>
const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + "/api/ws");
ws.onmessage = (e) => {
  const msg = JSON.parse(e.data);
  if (msg.type === "reload") {
    document.getElementById("diagram").src = "/api/svg?t=" + Date.now();
  }
};
</script>
</body>
</html>
`
