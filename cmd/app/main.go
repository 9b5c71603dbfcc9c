// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aura-vcf-bot/internal/application"
	"aura-vcf-bot/internal/config"
	"aura-vcf-bot/internal/domain/ports/repository"
	tele "aura-vcf-bot/internal/infra/adapters/telegram"
	"aura-vcf-bot/internal/infra/api"
	pg "aura-vcf-bot/internal/infra/db/postgres"
	"aura-vcf-bot/internal/infra/i18n"
	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/memory"
	"aura-vcf-bot/internal/infra/metrics"
	red "aura-vcf-bot/internal/infra/redis"
	"aura-vcf-bot/internal/infra/sched"
	"aura-vcf-bot/internal/infra/scheduler"
	"aura-vcf-bot/internal/infra/worker"
	"aura-vcf-bot/internal/usecase"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "1.0.0"
	commit  = "none"
)

type stores struct {
	states  repository.StateRepository
	batches repository.BatchRepository
	locker  repository.Locker
	limiter repository.RateLimiter
	close   func()
}

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted numbers)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- State stores (Redis, or memory) ----
	st := newStores(ctx, cfg, logger)
	defer st.close()

	// ---- Usage ledger (Postgres, or memory) ----
	usage, dbJobs, closeDB := newUsageRepo(ctx, cfg, logger)
	defer closeDB()

	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("load locales")
	}

	vcfUC := usecase.NewVCFUseCase(logger)
	statsUC := usecase.NewStatsUseCase(usage, logger)

	// ---- HTTP server first, so /health answers even if Telegram is down ----
	srv := api.NewServer(api.Options{
		Version:        version,
		SecretToken:    cfg.Bot.SecretToken,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// ---- Workers ----
	pool := worker.NewPool(cfg.Limits.BatchWorkers, logger)
	pool.Start(gctx)
	defer pool.Stop()
	debouncer := sched.NewDebouncer(cfg.Limits.QuietPeriod, pool, logger)
	defer debouncer.Stop()

	for _, j := range dbJobs {
		s := scheduler.NewScheduler(j.interval, j.job, logger)
		s.Start(gctx)
		defer s.Stop()
	}

	// ---- Telegram ----
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, cfg.Limits, st.limiter, translator, logger)
	if err != nil {
		logger.Error().Err(err).Msg("telegram bot initialization failed; HTTP server keeps running")
	} else {
		facade, err := application.NewBotFacade(application.Deps{
			VCF:        vcfUC,
			Stats:      statsUC,
			States:     st.states,
			Batches:    st.batches,
			Locker:     st.locker,
			Bot:        bot,
			Files:      bot,
			Members:    bot,
			Debouncer:  debouncer,
			Translator: translator,
			Logger:     logger,
		}, application.FacadeConfig{
			Channels:     cfg.Bot.RequiredChannels,
			Credit:       cfg.Bot.Credit,
			MaxFileBytes: cfg.Limits.MaxFileBytes(),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("bot facade")
		}
		bot.SetHandler(facade)
		srv.AttachBot(bot)
		logger.Info().Str("bot", bot.Username()).Msg("telegram bot initialized")

		if cfg.Bot.KeepAlive.Enabled {
			ka := scheduler.NewScheduler(cfg.Bot.KeepAlive.Interval, sched.NewKeepAlive(bot, cfg.Bot.KeepAlive.Silent, logger), logger)
			ka.Start(gctx)
			defer ka.Stop()
		}

		if cfg.Bot.Mode == "webhook" {
			if err := bot.RegisterWebhook(gctx, cfg.Bot.WebhookURL); err != nil {
				logger.Error().Err(err).Msg("webhook registration failed")
			}
			bot.StartWorkers(gctx)
			g.Go(func() error {
				<-gctx.Done()
				bot.Wait()
				return nil
			})
		} else {
			g.Go(func() error {
				if err := bot.StartPolling(gctx); err != nil && gctx.Err() == nil {
					return fmt.Errorf("telegram polling: %w", err)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("shutdown with error")
	}
	logger.Info().Msg("shutdown complete")
}

func newStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) stores {
	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err == nil {
			logger.Info().Msg("using redis for conversation state")
			return stores{
				states:  red.NewStateRepo(client, cfg.Redis.TTL),
				batches: red.NewBatchRepo(client, cfg.Redis.TTL),
				locker:  red.NewLocker(client),
				limiter: red.NewRateLimiter(client),
				close:   func() { _ = client.Close() },
			}
		}
		logger.Warn().Err(err).Msg("redis unavailable; falling back to in-memory stores")
	}
	return stores{
		states:  memory.NewStateRepo(),
		batches: memory.NewBatchRepo(),
		locker:  memory.NewLocker(),
		limiter: memory.NewRateLimiter(),
		close:   func() {},
	}
}

type periodicJob struct {
	interval time.Duration
	job      scheduler.Job
}

func newUsageRepo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.UsageRepository, []periodicJob, func()) {
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err == nil {
			logger.Info().Msg("using postgres usage ledger")
			repo := pg.NewUsageRepo(pool, pg.NewTxManager(pool))
			jobs := []periodicJob{
				{interval: 30 * time.Second, job: pg.NewPoolStatsJob(pool)},
				{interval: 6 * time.Hour, job: pg.NewPruneJob(repo, cfg.Database.Retention)},
			}
			return repo, jobs, pool.Close
		}
		logger.Warn().Err(err).Msg("postgres unavailable; usage is kept in memory")
	}
	return memory.NewUsageRepo(0), nil, func() {}
}
