package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
)

// MaxTokenSize bounds a single incoming message.
const MaxTokenSize = 1024

var ErrUnexpectedMessageType = errors.New("unexpected websocket message type")

// Conn carries one protocol token per text message.
type Conn struct {
	conn *websocket.Conn
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func newConn(conn *websocket.Conn) *Conn {
	conn.SetReadLimit(MaxTokenSize)

	return &Conn{
		conn: conn,
		done: make(chan struct{}),
	}
}

func (that *Conn) ReadLine(ctx context.Context) ([]byte, error) {
	messageType, payload, err := that.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	if messageType != websocket.MessageText {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedMessageType, messageType)
	}

	return payload, nil
}

func (that *Conn) WriteAll(ctx context.Context, payload []byte) error {
	if err := that.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Close performs the websocket close handshake once.
func (that *Conn) Close() error {
	that.closeOnce.Do(func() {
		that.closeErr = that.conn.Close(websocket.StatusNormalClosure, "bye")
		close(that.done)
	})

	if that.closeErr != nil {
		return fmt.Errorf("failed to close websocket: %w", that.closeErr)
	}

	return nil
}

// Done is closed once the connection has been released.
func (that *Conn) Done() <-chan struct{} {
	return that.done
}
