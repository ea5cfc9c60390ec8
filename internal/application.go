package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/console"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/tcp"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-duel/internal/usecase"
)

const persistTimeout = 5 * time.Second

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrInterrupted  = errors.New("interrupted by signal")
)

// IO is the terminal the local player sits at.
type IO struct {
	In  io.Reader
	Out io.Writer
}

// RunApp - runs one session until the players are done or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	return Run(context.Background(), logger, conf, IO{In: os.Stdin, Out: os.Stdout})
}

func Run(ctx context.Context, logger *slog.Logger, conf *config.Config, terminal IO) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return watchSignals(ctx, log)
	})

	group.Go(func() error {
		defer cancel()

		return play(ctx, logger, conf, terminal)
	})

	err := group.Wait()
	if errors.Is(err, ErrInterrupted) {
		log.Info("Application interrupted, shutting down")
		return nil
	}

	return err
}

func watchSignals(ctx context.Context, log *slog.Logger) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		log.Info("Received signal, shutting down", "signal", sig.String())
		return fmt.Errorf("%w: %s", ErrInterrupted, sig)
	case <-ctx.Done():
		return nil
	}
}

func play(ctx context.Context, logger *slog.Logger, conf *config.Config, terminal IO) error {
	log := logger.With("component", "app", "method", "play")

	role := conf.GetRole()
	screen := console.New(terminal.In, terminal.Out, role.Mark())

	name := conf.Name
	if name == "" {
		var err error
		if name, err = screen.PromptName(ctx); err != nil {
			return fmt.Errorf("failed to read player name: %w", err)
		}
	}

	sessionID := uuid.NewString()
	observers := usecase.Observers{screen}

	var statsRepo repository.StatsRepository
	if conf.Redis.Enabled {
		redisStorage, err := openStorage(ctx, conf)
		if err != nil {
			log.Warn("stats will not be persisted", "error", err)
		} else {
			defer func() {
				if closeErr := redisStorage.Close(); closeErr != nil {
					log.Error("could not close redis storage", "error", closeErr)
				}
			}()

			statsRepo = repository.NewStatsRepository(redisStorage.Connection)
			roundRepo := repository.NewRoundRepository(redisStorage.Connection)
			observers = append(observers, usecase.NewHistoryRecorder(ctx, logger, roundRepo, sessionID, role.Mark()))
		}
	}

	if role == entity.RoleResponder {
		screen.WaitingForConnection()
	}

	conn, release, err := connect(ctx, logger, conf)
	if err != nil {
		return &usecase.SessionError{Phase: usecase.PhaseConnecting, Err: err}
	}
	defer release()

	log.Info("Connected to opponent", "session_id", sessionID, "transport", conf.Transport)

	session := usecase.NewSession(logger, conn, screen, observers, usecase.SessionConfig{
		ID:          sessionID,
		Role:        role,
		Name:        name,
		MoveTimeout: conf.MoveTimeout,
	})

	stats, runErr := session.Run(ctx)

	screen.PrintStats(name, session.LastMover(), stats)

	if statsRepo != nil && stats.GamesPlayed > 0 {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()

		if err = statsRepo.Add(persistCtx, name, stats); err != nil {
			log.Error("could not persist stats", "error", err)
		}
	}

	return runErr
}

func openStorage(ctx context.Context, conf *config.Config) (*storage.RedisStorage, error) {
	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return redisStorage, nil
}

// connect dials the responder or waits for the initiator. release frees
// whatever the transport holds besides the connection itself.
func connect(ctx context.Context, logger *slog.Logger, conf *config.Config) (usecase.Conn, func(), error) {
	log := logger.With("component", "app", "method", "connect")
	addr := conf.GetAddr()

	policy := transport.RetryPolicy{
		MaxRetries:      conf.Dial.MaxRetries,
		InitialInterval: conf.Dial.InitialInterval,
		OnRetry: func(err error, next time.Duration) {
			log.Warn("Connection failed, retrying", "addr", addr, "next_attempt_in", next.String(), "error", err)
		},
	}

	noop := func() {}

	if conf.GetRole() == entity.RoleInitiator {
		log.Info("Dialing opponent", "addr", addr)

		if conf.Transport == config.TransportWebSocket {
			conn, err := websocket.Dial(ctx, addr, policy)
			if err != nil {
				return nil, noop, err
			}

			return conn, noop, nil
		}

		conn, err := tcp.Dial(ctx, addr, policy)
		if err != nil {
			return nil, noop, err
		}

		return conn, noop, nil
	}

	log.Info("Waiting for connection", "addr", addr)

	if conf.Transport == config.TransportWebSocket {
		listener, err := websocket.Listen(ctx, logger, addr)
		if err != nil {
			return nil, noop, err
		}

		release := func() {
			if closeErr := listener.Close(); closeErr != nil {
				log.Error("could not close websocket listener", "error", closeErr)
			}
		}

		conn, err := listener.Accept(ctx)
		if err != nil {
			release()
			return nil, noop, err
		}

		return conn, release, nil
	}

	listener, err := tcp.Listen(ctx, addr)
	if err != nil {
		return nil, noop, err
	}

	defer func() {
		if closeErr := listener.Close(); closeErr != nil {
			log.Error("could not close tcp listener", "error", closeErr)
		}
	}()

	conn, err := listener.Accept(ctx)
	if err != nil {
		return nil, noop, err
	}

	return conn, noop, nil
}
