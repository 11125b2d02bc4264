package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config is populated three ways, layered flag > env > file-default: an
// optional .env file loaded first via godotenv, overridden by process
// environment variables via env.Parse, overridden last by explicit CLI
// flags parsed by kong in main(). Struct tags serve both env.Parse (the
// `env`/`envDefault` tags) and kong (the `help`/`name` tags, read when
// main.go passes this struct to kong.Parse); kong only overwrites a field when its flag is
// actually passed, so values from this layer survive untouched otherwise.
type config struct {
	NATSURL        string `env:"REPLAY_NATS_URL" envDefault:"nats://127.0.0.1:4222" name:"nats-url" help:"NATS server URL to subscribe against."`
	NATSSubject    string `env:"REPLAY_NATS_SUBJECT" envDefault:"replay.events" name:"nats-subject" help:"NATS subject carrying upstream events."`
	ListenAddr     string `env:"REPLAY_LISTEN_ADDR" envDefault:":8080" name:"listen-addr" help:"Address the WebSocket replay endpoint listens on."`
	MetricsAddr    string `env:"REPLAY_METRICS_ADDR" envDefault:":9102" name:"metrics-addr" help:"Address the Prometheus /metrics endpoint listens on."`
	BufferSize     int    `env:"REPLAY_BUFFER_SIZE" envDefault:"256" name:"buffer-size" help:"Segment capacity (unbounded) or retention limit (bounded)."`
	Unbounded      bool   `env:"REPLAY_UNBOUNDED" envDefault:"true" name:"unbounded" help:"Use the unbounded segmented buffer instead of the bounded ring."`
	SysreportEvery string `env:"REPLAY_SYSREPORT_INTERVAL" envDefault:"10s" name:"sysreport-interval" help:"How often to log host/buffer status."`
	EnvFile        string `env:"REPLAY_ENV_FILE" envDefault:".env" name:"env-file" help:"Optional .env file loaded before environment variables."`
}

// loadConfig performs the first two layers (file-default, env); the third
// (explicit CLI flags) is applied by main() via kong after this returns.
func loadConfig() (*config, error) {
	cfg := &config{}

	// A pre-parse pass picks up REPLAY_ENV_FILE so a user can point at a
	// non-default .env path purely through the environment, before the
	// full struct (including its own EnvFile field) is populated.
	envFile := os.Getenv("REPLAY_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
