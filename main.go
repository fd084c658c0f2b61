package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	goredis "github.com/redis/go-redis/v9"

	"github.com/krish-ai/chat-server/internal/agent/graph"
	"github.com/krish-ai/chat-server/internal/agent/model"
	"github.com/krish-ai/chat-server/internal/api"
	"github.com/krish-ai/chat-server/internal/core"
	"github.com/krish-ai/chat-server/internal/server"
	logx "github.com/krish-ai/chat-server/pkg/logger"
	pkgredis "github.com/krish-ai/chat-server/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

// AppConfig defines all configurable parameters of the chat server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server server.Config
	Redis  pkgredis.Config

	// Completion provider
	Completion model.CompletionConfig
	Planner    model.PlannerConfig
	Prompt     model.PromptConfig

	// Enrichment
	Enrich model.EnrichConfig
	Search model.SearchConfig
	Cache  model.CacheConfig
}

func main() {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb goredis.Cmdable
	if envCfg.Cache.Enabled {
		if !envCfg.Redis.Enabled() {
			logx.Fatal().Msg("CACHE_ENABLED requires REDIS_URL")
		}
		client, err := envCfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer client.Close()
		rdb = client
		logx.Info().Msg("Connected to Redis successfully")
	}

	runner, err := graph.BuildChatGraph(ctx, graph.Config{
		Completion: envCfg.Completion,
		Planner:    envCfg.Planner,
		Prompt:     envCfg.Prompt,
		Enrich:     envCfg.Enrich,
		Search:     envCfg.Search,
		Cache:      envCfg.Cache,
		Redis:      rdb,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build chat graph")
	}

	router := api.NewRouter(runner, api.RouterConfig{
		ChatPath:  envCfg.Server.ChatPath,
		StaticDir: envCfg.Server.StaticDir,
	})
	srv := server.NewServer(router, envCfg.Server)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case err := <-serveErr:
		if err != nil {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
