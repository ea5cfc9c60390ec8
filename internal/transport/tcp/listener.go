package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rocketscienceinc/tictactoe-duel/internal/transport"
)

type Listener struct {
	listener net.Listener
}

func Listen(ctx context.Context, addr string) (*Listener, error) {
	var config net.ListenConfig

	listener, err := config.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &Listener{listener: listener}, nil
}

// Accept waits for exactly one peer.
func (that *Listener) Accept(ctx context.Context) (*Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = that.listener.Close()
	})
	defer stop()

	conn, err := that.listener.Accept()
	if err != nil {
		return nil, fmt.Errorf("failed to accept peer: %w", contextErr(ctx, err))
	}

	return NewConn(conn), nil
}

func (that *Listener) Addr() string {
	return that.listener.Addr().String()
}

func (that *Listener) Close() error {
	if err := that.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to close listener: %w", err)
	}

	return nil
}

// Dial connects to a listening peer, retrying according to policy.
func Dial(ctx context.Context, addr string, policy transport.RetryPolicy) (*Conn, error) {
	var dialer net.Dialer

	conn, err := transport.Retry(ctx, policy, func(ctx context.Context) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp", addr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	return NewConn(conn), nil
}
