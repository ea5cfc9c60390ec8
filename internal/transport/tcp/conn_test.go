package tcp

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConn_ReadLine(t *testing.T) {
	t.Run("Splits coalesced writes into tokens", func(t *testing.T) {
		// Given: a peer that writes two tokens in a single write
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		go func() {
			_, _ = client.Write([]byte("5\nPlay Again\r\n"))
		}()

		// When: reading twice
		first, err := conn.ReadLine(context.Background())
		require.NoError(t, err)
		second, err := conn.ReadLine(context.Background())
		require.NoError(t, err)

		// Then: each read yields exactly one token
		assert.Equal(t, []byte("5"), first)
		assert.Equal(t, []byte("Play Again"), second)
	})

	t.Run("Reassembles a fragmented token", func(t *testing.T) {
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		go func() {
			_, _ = client.Write([]byte("Fun "))
			_, _ = client.Write([]byte("Times\n"))
		}()

		line, err := conn.ReadLine(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []byte("Fun Times"), line)
	})

	t.Run("Returns EOF when the peer hangs up", func(t *testing.T) {
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close() })

		require.NoError(t, client.Close())

		_, err := conn.ReadLine(context.Background())

		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("Unblocks when the context deadline passes", func(t *testing.T) {
		// Given: a silent peer
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		// When: waiting for a token
		_, err := conn.ReadLine(ctx)

		// Then: the wait ends with a deadline error
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Unblocks when the context is canceled", func(t *testing.T) {
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := conn.ReadLine(ctx)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Rejects an oversized line", func(t *testing.T) {
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		go func() {
			_, _ = client.Write([]byte(strings.Repeat("a", 2*MaxTokenSize) + "\n"))
		}()

		_, err := conn.ReadLine(context.Background())

		require.Error(t, err)
	})
}

func TestConn_WriteAll(t *testing.T) {
	t.Run("Terminates the payload with a newline", func(t *testing.T) {
		client, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close(); _ = client.Close() })

		received := make(chan []byte, 1)
		go func() {
			buf := make([]byte, 16)
			n, _ := client.Read(buf)
			received <- buf[:n]
		}()

		require.NoError(t, conn.WriteAll(context.Background(), []byte("alice")))

		assert.Equal(t, []byte("alice\n"), <-received)
	})

	t.Run("Rejects payloads that would break framing", func(t *testing.T) {
		_, server := net.Pipe()
		conn := NewConn(server)
		t.Cleanup(func() { _ = conn.Close() })

		err := conn.WriteAll(context.Background(), []byte("5\n6"))

		require.ErrorIs(t, err, ErrBadPayload)
	})
}

func TestConn_Close(t *testing.T) {
	_, server := net.Pipe()
	conn := NewConn(server)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestDialAndAccept(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a responder listening on an ephemeral port
	listener, err := Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	accepted := make(chan *Conn, 1)
	go func() {
		conn, acceptErr := listener.Accept(ctx)
		if acceptErr == nil {
			accepted <- conn
		}
	}()

	// When: the initiator dials it
	initiator, err := Dial(ctx, listener.Addr(), transport.RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = initiator.Close() })

	responder := <-accepted
	t.Cleanup(func() { _ = responder.Close() })

	// Then: tokens flow both ways
	require.NoError(t, initiator.WriteAll(ctx, []byte("alice")))
	line, err := responder.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), line)

	require.NoError(t, responder.WriteAll(ctx, []byte("player2")))
	line, err = initiator.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("player2"), line)
}

func TestListener_AcceptCanceled(t *testing.T) {
	listener, err := Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err = listener.Accept(ctx)

	require.ErrorIs(t, err, context.Canceled)
}
