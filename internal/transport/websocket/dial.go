package websocket

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coder/websocket"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport"
)

// Dial connects to a responder's Listener at addr (host:port), retrying according to policy.
func Dial(ctx context.Context, addr string, policy transport.RetryPolicy) (*Conn, error) {
	endpoint := url.URL{Scheme: "ws", Host: addr, Path: Path}

	wsConn, err := transport.Retry(ctx, policy, func(ctx context.Context) (*websocket.Conn, error) {
		conn, _, dialErr := websocket.Dial(ctx, endpoint.String(), nil)
		return conn, dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint.String(), err)
	}

	return newConn(wsConn), nil
}
