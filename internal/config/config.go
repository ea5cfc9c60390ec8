package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/protocol"
)

const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"

	// DefaultResponderName is the identity a responder announces when none is configured.
	DefaultResponderName = "player2"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel    string        `yaml:"log-level"    env:"TICTACTOE_LOG_LEVEL"    env-default:"info"`
	LogFormat   string        `yaml:"log-format"   env:"TICTACTOE_LOG_FORMAT"   env-default:"json"`
	Role        string        `yaml:"role"         env:"TICTACTOE_ROLE"`
	Name        string        `yaml:"name"         env:"TICTACTOE_NAME"`
	Transport   string        `yaml:"transport"    env:"TICTACTOE_TRANSPORT"    env-default:"tcp"`
	Host        string        `yaml:"host"         env:"TICTACTOE_HOST"         env-default:"localhost"`
	Port        string        `yaml:"port"         env:"TICTACTOE_PORT"         env-default:"5000"`
	MoveTimeout time.Duration `yaml:"move-timeout" env:"TICTACTOE_MOVE_TIMEOUT" env-default:"0s"`
	Dial        Dial          `yaml:"dial"`
	Redis       Redis         `yaml:"redis"`
}

type Dial struct {
	MaxRetries      uint64        `yaml:"max-retries"      env:"TICTACTOE_DIAL_MAX_RETRIES"      env-default:"5"`
	InitialInterval time.Duration `yaml:"initial-interval" env:"TICTACTOE_DIAL_INITIAL_INTERVAL" env-default:"500ms"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"TICTACTOE_REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host"    env:"TICTACTOE_REDIS_HOST"    env-default:"localhost"`
	Port    string `yaml:"port"    env:"TICTACTOE_REDIS_PORT"    env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file, environment variables override it.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// MustLoadEnv - load configuration from environment variables only.
func MustLoadEnv() *Config {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(fmt.Errorf("unable to load config from env: %w", err))
	}

	return config
}

// Validate checks the values that cleanenv can not.
func (that *Config) Validate() error {
	role, err := entity.ParseRole(that.Role)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if that.Name == "" && role == entity.RoleResponder {
		that.Name = DefaultResponderName
	}

	if that.Name != "" {
		if err = protocol.ValidateIdentity(that.Name); err != nil {
			return fmt.Errorf("%w: name: %w", ErrInvalidConfig, err)
		}
	}

	switch that.Transport {
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, that.Transport)
	}

	switch that.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, that.LogFormat)
	}

	if that.MoveTimeout < 0 {
		return fmt.Errorf("%w: negative move timeout", ErrInvalidConfig)
	}

	return nil
}

func (that *Config) GetRole() entity.Role {
	return entity.Role(that.Role)
}

// GetAddr is the address the initiator dials and the responder listens on.
func (that *Config) GetAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
