package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	app "github.com/rocketscienceinc/tictactoe-duel/internal"
	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	conf := initConfig(*configPath)
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config: .env first, then the YAML file if present, environment on top.
func initConfig(path string) *config.Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("failed to load .env: %w", err))
	}

	var conf *config.Config
	if _, err := os.Stat(path); err == nil {
		conf = config.MustLoad(path)
	} else {
		conf = config.MustLoadEnv()
	}

	if err := conf.Validate(); err != nil {
		panic(err)
	}

	return conf
}

// initialize logger. Logs go to stderr so they never interleave with the board on stdout.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}

	if conf.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}
