package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumehq/chat-relay/internal/broker"
	"github.com/lumehq/chat-relay/internal/config"
	"github.com/lumehq/chat-relay/internal/handler"
	"github.com/lumehq/chat-relay/internal/service/relay"
	"github.com/lumehq/chat-relay/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg)

	br, err := buildBroker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize broker relay")
	}
	defer func() {
		if err := br.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close broker relay")
		}
	}()

	relaySvc := relay.New(
		session.NewStore(),
		buildStreamer(cfg),
		relay.NewPublisher(br.Publisher()),
		cfg.Debug,
	)

	router := handler.NewRouter(relaySvc, br, cfg.Debug)
	startServer(ctx, cfg.Server, router)
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func buildBroker(cfg *config.Config) (broker.Broker, error) {
	if cfg.Broker.Addr == "" {
		log.Warn().Msg("no REDIS_ADDR configured, using in-process relay: events are not visible to other processes")
		return broker.NewInMemory(), nil
	}

	log.Info().Str("addr", cfg.Broker.Addr).Msg("using redis streams relay")
	return broker.NewRedis(broker.RedisOptions{
		Addr:     cfg.Broker.Addr,
		Password: cfg.Broker.Password,
		DB:       cfg.Broker.DB,
	})
}

func buildStreamer(cfg *config.Config) relay.Streamer {
	if cfg.Model.Mock {
		log.Info().Msg("mock response streamer enabled")
		return relay.NewMockStreamer()
	}

	log.Info().Str("model", cfg.Model.Model).Msg("openai response streamer enabled")
	return relay.NewOpenAIStreamer(relay.OpenAIOptions{
		APIKey:      cfg.Model.APIKey,
		BaseURL:     cfg.Model.BaseURL,
		Model:       cfg.Model.Model,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
		Timeout:     cfg.Model.Timeout,
	})
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("chat relay listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
