package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"emi-calculator/config"
	httpLayer "emi-calculator/http"
	"emi-calculator/integrations/cbr"
	"emi-calculator/integrations/exchangerate"
	"emi-calculator/repository"
	"emi-calculator/service"
)

func (cli *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.serve(ctx, cfg)
		},
	}
}

func (cli *CLI) serve(ctx context.Context, cfg *config.Config) error {
	cache, closeCache := newCache(ctx, cfg, cli.log)
	defer closeCache()

	source := service.NewCachedRateSource(cli.rateSource(cfg), cache, cfg.CacheTTL, cli.log)

	sessions := service.NewSessionManager(func() *service.CurrencyConverter {
		return service.NewCurrencyConverter(source, cfg.RateFetchTimeout, cli.log)
	}, cfg.DefaultBaseCurrency, cfg.SessionIdleTimeout, cli.log)
	if err := sessions.Start(cfg.SessionSweepSpec); err != nil {
		return err
	}
	defer sessions.Stop()

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(httpLayer.Dependencies{
		Loans:       service.NewLoanService(repository.NewLoanRepositoryMemory(0), cache, cfg.CacheTTL, cli.log),
		Terms:       service.NewTermRecommendationService(cli.log),
		Sessions:    sessions,
		RateLimiter: rateLimiter,
		Logger:      cli.log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		cli.log.WithFields(logrus.Fields{
			"addr":     server.Addr,
			"provider": cfg.RateProvider,
		}).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		cli.log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	cli.log.Info("server exited")
	return nil
}

// rateSource picks the configured provider unless one was injected.
func (cli *CLI) rateSource(cfg *config.Config) service.RateSource {
	if cli.source != nil {
		return cli.source
	}
	switch cfg.RateProvider {
	case config.ProviderCBR:
		return cbr.NewCBRClient(cfg.CBRURL, cfg.RateFetchTimeout, cli.log)
	default:
		return exchangerate.NewClient(cfg.ExchangeRateURL, cfg.ExchangeRateAPIKey, cfg.RateFetchTimeout, cli.log)
	}
}

// newCache returns Redis when REDIS_ADDR is set and reachable, otherwise an
// in-process cache.
func newCache(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repository.CacheRepository, func()) {
	if cfg.RedisAddr == "" {
		return repository.NewMemoryCache(), func() {}
	}

	redisCache := repository.NewRedisCache(cfg.RedisAddr, "emi:")
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, using in-memory cache")
		_ = redisCache.Close()
		return repository.NewMemoryCache(), func() {}
	}

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.WithError(err).Warn("error closing redis")
		}
	}
}
