package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-duel/pkg/handlers"
)

const (
	Path            = "/ws"
	shutdownTimeout = 5 * time.Second
)

// Listener serves the responder side: the first peer that upgrades on Path
// becomes the session connection, later peers are refused.
type Listener struct {
	logger   *slog.Logger
	server   *http.Server
	listener net.Listener

	peers   chan *Conn
	claimed atomic.Bool
}

func Listen(ctx context.Context, logger *slog.Logger, addr string) (*Listener, error) {
	var config net.ListenConfig

	listener, err := config.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	that := &Listener{
		logger:   logger.With("component", "websocket"),
		listener: listener,
		peers:    make(chan *Conn, 1),
	}

	router := chi.NewRouter()
	router.Get(Path, that.handleUpgrade)
	router.Get("/healthz", handlers.StatusHandler(that.status))

	that.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if serveErr := that.server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			that.logger.Error("websocket server stopped", "error", serveErr)
		}
	}()

	return that, nil
}

// Accept waits for the opponent to upgrade.
func (that *Listener) Accept(ctx context.Context) (*Conn, error) {
	select {
	case conn := <-that.peers:
		return conn, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to accept peer: %w", ctx.Err())
	}
}

func (that *Listener) Addr() string {
	return that.listener.Addr().String()
}

func (that *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown websocket server: %w", err)
	}

	return nil
}
