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
	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/config"
	"github.com/femoon/tts-azure-web/backend/internal/handler"
	speechhandler "github.com/femoon/tts-azure-web/backend/internal/handler/speech"
	"github.com/femoon/tts-azure-web/backend/internal/logging"
	"github.com/femoon/tts-azure-web/backend/internal/metrics"
	"github.com/femoon/tts-azure-web/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}

	// 未配置订阅密钥时不创建服务，语音路由统一返回 503
	var speechSvc speechhandler.SpeechService
	if cfg.Speech.Enabled {
		svc, err := speech.NewService(cfg.Speech.ServiceConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize speech service")
		}
		speechSvc = svc
		log.Info().Str("region", cfg.Speech.Region).Msg("speech service initialized")
	} else {
		log.Warn().Msg("SPEECH_KEY 未配置，语音路由将返回 503")
	}

	router := handler.NewRouter(speechSvc, metrics.NewRegistry(), cfg.Server)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("tts relay listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
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
