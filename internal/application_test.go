package application

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
	"github.com/rocketscienceinc/tictactoe-duel/internal/usecase"
)

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	return strconv.Itoa(port)
}

func newConfig(role, name, transport, port string) *config.Config {
	return &config.Config{
		LogLevel:  "debug",
		LogFormat: "text",
		Role:      role,
		Name:      name,
		Transport: transport,
		Host:      "127.0.0.1",
		Port:      port,
		Dial: config.Dial{
			MaxRetries:      20,
			InitialInterval: 20 * time.Millisecond,
		},
	}
}

func TestRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, transport := range []string{config.TransportTCP, config.TransportWebSocket} {
		t.Run("Plays one round over "+transport, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			// Given: a responder and an initiator on the same port
			port := freePort(t)
			responderConf := newConfig("responder", "", transport, port)
			initiatorConf := newConfig("initiator", "alice", transport, port)
			require.NoError(t, responderConf.Validate())
			require.NoError(t, initiatorConf.Validate())

			responderOut := &bytes.Buffer{}
			initiatorOut := &bytes.Buffer{}

			// When: X takes the 1-5-9 diagonal and declines a rematch
			responderDone := make(chan error, 1)
			go func() {
				responderDone <- Run(ctx, logger, responderConf, IO{In: strings.NewReader("2\n3\n"), Out: responderOut})
			}()

			initiatorErr := Run(ctx, logger, initiatorConf, IO{In: strings.NewReader("5\n9\n1\nn\n"), Out: initiatorOut})

			// Then: both sides finish cleanly and print their own view
			require.NoError(t, initiatorErr)
			require.NoError(t, <-responderDone)

			assert.Contains(t, initiatorOut.String(), "You won!")
			assert.Contains(t, initiatorOut.String(), "player2's Turn...")
			assert.Contains(t, initiatorOut.String(), "Number of wins: 1")

			assert.Contains(t, responderOut.String(), "Waiting for connection...")
			assert.Contains(t, responderOut.String(), "You lost...")
			assert.Contains(t, responderOut.String(), "Player's user name: player2")
			assert.Contains(t, responderOut.String(), "Last player to make a move: alice")
		})
	}

	t.Run("Gives up dialing a missing responder", func(t *testing.T) {
		conf := newConfig("initiator", "alice", config.TransportTCP, freePort(t))
		conf.Dial.MaxRetries = 1

		err := Run(context.Background(), logger, conf, IO{In: strings.NewReader(""), Out: io.Discard})

		var sessionErr *usecase.SessionError
		require.ErrorAs(t, err, &sessionErr)
		assert.Equal(t, usecase.PhaseConnecting, sessionErr.Phase)
	})
}
