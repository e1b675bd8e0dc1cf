package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/config"
	"webnova-quiz-service/internal/logging"
	"webnova-quiz-service/internal/metrics"
	"webnova-quiz-service/internal/tracing"
	transport "webnova-quiz-service/internal/transport/http"
)

const serviceName = "webnova-quiz-service"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	log := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.Server.Mode == gin.DebugMode,
	})
	return cfg, log, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	tracingOn := cfg.Tracing.Enabled && cfg.Tracing.CollectorEndpoint != ""
	if tracingOn {
		shutdown, err := tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	st, err := buildStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("closing stores failed", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.Server.Mode)
	router := transport.NewRouter(st.services, log, transport.Options{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RateLimitMax:    cfg.RateLimit.MaxRequests,
		RateLimitWindow: config.TTLDuration(cfg.RateLimit.Window, time.Minute),
		Metrics:         metrics.New(),
		Tracing:         tracingOn,
		Demo:            cfg.Demo(),
	})

	server := transport.NewServer(":"+finalPort, router)
	server.ReadTimeout = config.TTLDuration(cfg.Server.ReadTimeout, server.ReadTimeout)
	server.WriteTimeout = config.TTLDuration(cfg.Server.WriteTimeout, server.WriteTimeout)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr), zap.Bool("demo", cfg.Demo()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
