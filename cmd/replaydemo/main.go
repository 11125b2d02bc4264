// Command replaydemo wires internal/natsfeed, internal/wsgateway, and
// internal/sysreport around a *replay.Processor: NATS messages in, fanned
// out to any number of WebSocket clients, with a Prometheus /metrics
// endpoint and periodic host-resource logging.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/nats-io/nats.go"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/hashicorp/go-multicast-replay/internal/natsfeed"
	"github.com/hashicorp/go-multicast-replay/internal/sysreport"
	"github.com/hashicorp/go-multicast-replay/internal/wsgateway"
	"github.com/hashicorp/go-multicast-replay/replay"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{Name: "replaydemo", Level: hclog.Info})

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug("automaxprocs", "msg", hclog.Fmt(format, args...))
	})); err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	kong.Parse(cfg, kong.Name("replaydemo"),
		kong.Description("Fans out a NATS event subject to WebSocket subscribers through a replay buffer."))

	sysInterval, err := time.ParseDuration(cfg.SysreportEvery)
	if err != nil {
		logger.Warn("invalid sysreport interval, using default", "value", cfg.SysreportEvery, "error", err)
		sysInterval = 10 * time.Second
	}

	recorder, metricsHandler, err := newMetrics("replaydemo")
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	proc := replay.New[[]byte](cfg.BufferSize, cfg.Unbounded,
		replay.WithLogger(logger),
		replay.WithMetrics(recorder),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logger.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	feed := natsfeed.New[[]byte](conn, cfg.NATSSubject, proc.OnNext, nil,
		natsfeed.WithLogger(logger))
	go natsfeed.Drive(ctx, proc, feed)

	reporter := sysreport.New(proc, sysInterval, logger, nil)
	go reporter.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(proc, logger))
	mux.Handle("/metrics", metricsHandler)

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("replay http server failed", "error", err)
		}
	}()
	go func() {
		if cfg.MetricsAddr != cfg.ListenAddr {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics http server failed", "error", err)
			}
		}
	}()

	logger.Info("replaydemo started", "listen_addr", cfg.ListenAddr, "metrics_addr", cfg.MetricsAddr)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func wsHandler(proc *replay.Processor[[]byte], logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		gw := wsgateway.New[[]byte](conn, nil, logger)
		proc.Subscribe(gw)
	}
}
