package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListener(t *testing.T, ctx context.Context) *Listener {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	listener, err := Listen(ctx, logger, "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	return listener
}

func connectPair(t *testing.T, ctx context.Context, listener *Listener) (*Conn, *Conn) {
	t.Helper()

	initiator, err := Dial(ctx, listener.Addr(), transport.RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond})
	require.NoError(t, err)

	responder, err := listener.Accept(ctx)
	require.NoError(t, err)

	return initiator, responder
}

// closePair runs both close handshakes concurrently, each side waits for the other's frame.
func closePair(a, b *Conn) {
	closed := make(chan error, 1)
	go func() { closed <- b.Close() }()
	_ = a.Close()
	<-closed
}

func TestListener_ExchangesTokens(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a connected initiator and responder
	listener := newListener(t, ctx)
	initiator, responder := connectPair(t, ctx, listener)

	// When: each side sends one token
	require.NoError(t, initiator.WriteAll(ctx, []byte("5")))
	require.NoError(t, initiator.WriteAll(ctx, []byte("Fun Times")))

	first, err := responder.ReadLine(ctx)
	require.NoError(t, err)
	second, err := responder.ReadLine(ctx)
	require.NoError(t, err)

	require.NoError(t, responder.WriteAll(ctx, []byte("Closing")))
	reply, err := initiator.ReadLine(ctx)
	require.NoError(t, err)

	// Then: message boundaries are preserved
	assert.Equal(t, []byte("5"), first)
	assert.Equal(t, []byte("Fun Times"), second)
	assert.Equal(t, []byte("Closing"), reply)

	closePair(initiator, responder)
}

func TestListener_RefusesSecondPeer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a listener that already has its opponent
	listener := newListener(t, ctx)
	initiator, responder := connectPair(t, ctx, listener)
	t.Cleanup(func() { closePair(initiator, responder) })

	// When: a third party tries to join
	_, err := Dial(ctx, listener.Addr(), transport.RetryPolicy{MaxRetries: 0})

	// Then: the upgrade is refused
	require.Error(t, err)
}

func TestListener_Health(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener := newListener(t, ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+listener.Addr()+"/healthz", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "waiting", string(body))
}

func TestListener_AcceptCanceled(t *testing.T) {
	listener := newListener(t, context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := listener.Accept(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
