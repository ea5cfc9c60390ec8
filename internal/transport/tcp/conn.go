// Package tcp carries protocol tokens over a plain TCP stream, one token per
// newline-terminated line.
package tcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// MaxTokenSize bounds a single line, terminator excluded.
const MaxTokenSize = 1024

var ErrBadPayload = errors.New("payload must not contain line breaks")

type Conn struct {
	conn    net.Conn
	scanner *bufio.Scanner

	closeOnce sync.Once
	closeErr  error
}

func NewConn(conn net.Conn) *Conn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, MaxTokenSize), MaxTokenSize+1)

	return &Conn{
		conn:    conn,
		scanner: scanner,
	}
}

// ReadLine blocks until one full line arrives, ctx is done or its deadline passes.
func (that *Conn) ReadLine(ctx context.Context) ([]byte, error) {
	release := bindDeadline(ctx, that.conn.SetReadDeadline)
	defer release()

	if !that.scanner.Scan() {
		err := that.scanner.Err()
		if err == nil {
			err = io.EOF
		}

		return nil, fmt.Errorf("failed to read token: %w", contextErr(ctx, err))
	}

	line := bytes.TrimSuffix(that.scanner.Bytes(), []byte("\r"))

	return bytes.Clone(line), nil
}

// WriteAll sends payload as one line.
func (that *Conn) WriteAll(ctx context.Context, payload []byte) error {
	if bytes.ContainsAny(payload, "\r\n") {
		return fmt.Errorf("%w: %q", ErrBadPayload, payload)
	}

	release := bindDeadline(ctx, that.conn.SetWriteDeadline)
	defer release()

	line := make([]byte, 0, len(payload)+1)
	line = append(line, payload...)
	line = append(line, '\n')

	if _, err := that.conn.Write(line); err != nil {
		return fmt.Errorf("failed to write token: %w", contextErr(ctx, err))
	}

	return nil
}

// Close releases the connection. Only the first call closes the socket.
func (that *Conn) Close() error {
	that.closeOnce.Do(func() {
		that.closeErr = that.conn.Close()
	})

	return that.closeErr
}

func (that *Conn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

// bindDeadline expires the socket deadline once ctx is done, for the duration of one call.
func bindDeadline(ctx context.Context, setDeadline func(time.Time) error) func() {
	stop := context.AfterFunc(ctx, func() {
		_ = setDeadline(time.Now())
	})

	return func() {
		stop()
		_ = setDeadline(time.Time{})
	}
}

// contextErr prefers the context error when the socket failed because of it.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}

	return err
}
