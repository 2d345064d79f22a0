package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/events"
	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/replay"
	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/transport/httpapi"
	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/transport/tcp"
	"github.com/dayanaadylkhanova/altcha-pow/internal/app"
	"github.com/dayanaadylkhanova/altcha-pow/internal/service"
	"github.com/dayanaadylkhanova/altcha-pow/pkg/config"
	"github.com/dayanaadylkhanova/altcha-pow/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewJSON(slog.LevelError).Error("startup failed", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.NewJSON(logger.LevelFromEnv(cfg.LogLevel))

	settings, err := form.SettingsFromConfig(cfg.Altcha)
	if err != nil {
		log.Error("invalid captcha settings", slog.Any("err", err))
		os.Exit(1)
	}

	opts := []form.Option{}

	guard, closeGuard, err := replayGuard(cfg.Replay, log)
	if err != nil {
		log.Error("replay guard unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeGuard()
	if guard != nil {
		opts = append(opts, form.WithReplayGuard(guard, cfg.Replay.DefaultTTL))
	}

	pub, closePub, err := publisher(cfg.NATS, log)
	if err != nil {
		log.Error("event publisher unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer closePub()
	opts = append(opts, form.WithPublisher(pub))

	proto := service.NewProtocol(service.WithShape(settings.Shape))
	captcha := form.New(log, proto, opts...)

	var runners []app.Runner
	if cfg.HTTPListenAddr != "" {
		runners = append(runners, httpapi.NewServer(log, cfg.HTTPListenAddr, cfg.ShutdownWait, settings, captcha))
	}
	if cfg.TCPListenAddr != "" {
		runners = append(runners, tcp.NewServer(log, cfg.TCPListenAddr, cfg.ShutdownWait, settings, captcha))
	}

	if err := app.New(runners...).Run(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
	}
}

// replayGuard picks redis when an address is configured, memory otherwise.
func replayGuard(cfg config.ReplayConfig, log *slog.Logger) (form.ReplayGuard, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	if cfg.RedisAddr == "" {
		log.Info("replay protection enabled", "store", "memory")
		return replay.NewMemory(time.Now), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("replay protection enabled", "store", "redis", "addr", cfg.RedisAddr)
	return replay.NewRedis(client), func() { _ = client.Close() }, nil
}

// publisher sends verification events to NATS when configured, to the log otherwise.
func publisher(cfg config.NATSConfig, log *slog.Logger) (form.Publisher, func(), error) {
	if cfg.URL == "" {
		return events.NewLog(log), func() {}, nil
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("altcha-pow"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	pub := events.NewNATS(nc, cfg.SubjectPrefix)
	log.Info("verification events enabled", "subject", pub.Subject())
	return pub, func() { _ = nc.Drain() }, nil
}
