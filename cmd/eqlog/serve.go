package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/eqlog/eqlog-go/pkg/eqlog"
)

var (
	// serve flags
	serveAddr     string
	serveFile     string
	servePlayer   string
	serveSpamFile string
)

// serveShutdownTimeout bounds graceful HTTP shutdown.
const serveShutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream parse results over a websocket",
	Long: `Serve a websocket endpoint at /stream that parses the given log file
and streams the protocol messages (progress, encounter, metadata, error)
as JSON frames, one parse per connection.

Closing the socket abandons the parse; there is no mid-parse resume.

Example:
  eqlog serve --addr :8080 --file eqlog_Tarim_project1999.txt`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080",
		"HTTP listen address")
	serveCmd.Flags().StringVar(&serveFile, "file", "",
		"Log file to parse per connection (required)")
	serveCmd.Flags().StringVarP(&servePlayer, "player", "p", "",
		"Logging player's name (overrides the filename-derived hint)")
	serveCmd.Flags().StringVar(&serveSpamFile, "spam-file", "",
		"YAML file extending the chat-spam avoid list")
	_ = serveCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(serveCmd)
}

// streamHandler runs one parse per websocket connection.
type streamHandler struct {
	upgrader websocket.Upgrader
	path     string
	opts     []eqlog.Option
	log      *slog.Logger
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends application frames; the read loop exists to
	// notice the peer going away and abandon the parse.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	f, err := os.Open(h.path)
	if err != nil {
		h.log.Error("open log file", "err", err)
		_ = conn.WriteJSON(eqlog.Message{Type: eqlog.MessageError, Error: "could not open log file"})
		return
	}
	defer f.Close()

	p, err := eqlog.NewParser(f, h.opts...)
	if err != nil {
		h.log.Error("create parser", "err", err)
		_ = conn.WriteJSON(eqlog.Message{Type: eqlog.MessageError, Error: err.Error()})
		return
	}

	for msg := range p.Run(ctx) {
		if err := conn.WriteJSON(msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket write failed", "err", err)
			}
			return
		}
	}
	h.log.Info("parse streamed", "remote", r.RemoteAddr)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := buildOptions(servePlayer, serveSpamFile, serveFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	mux := http.NewServeMux()
	mux.Handle("/stream", &streamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		path: serveFile,
		opts: opts,
		log:  logger,
	})

	srv := &http.Server{Addr: serveAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", serveAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
