package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"bidding/db"
	"bidding/db/migrations"
	"bidding/internal/config"
	"bidding/internal/handlers"
	"bidding/internal/jobs"
	"bidding/internal/notify"
	"bidding/internal/refcode"
	"bidding/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "bidding-server",
		Usage: "procurement bidding service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Value: true, Usage: "apply migrations before start"},
				},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Action: func(c *cli.Context) error {
					return withDB(c, func(cfg *config.Config, conn *sqlx.DB, log *logrus.Logger) error {
						return migrations.Run(conn.DB, log)
					})
				},
				Subcommands: []*cli.Command{
					{
						Name:  "status",
						Usage: "print migration status",
						Action: func(c *cli.Context) error {
							return withDB(c, func(cfg *config.Config, conn *sqlx.DB, log *logrus.Logger) error {
								return migrations.Status(conn.DB, log)
							})
						},
					},
				},
			},
			{
				Name:  "expire-contracts",
				Usage: "send contract expiry notices once and exit",
				Action: func(c *cli.Context) error {
					return withDB(c, func(cfg *config.Config, conn *sqlx.DB, log *logrus.Logger) error {
						n, err := jobs.NewExpiryNotifier(db.NewStorage(conn), notify.NewInline(dispatcherFor(c.Context, cfg, log), log),
							cfg.ContractExpiryWindowDays, log).Run(c.Context)
						if err != nil {
							return err
						}
						log.WithField("contracts", n).Info("contract expiry notices sent")
						return nil
					})
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("bidding-server failed")
	}
}

// withDB читает настройки, подключается к базе и закрывает соединение после fn.
func withDB(c *cli.Context, fn func(cfg *config.Config, conn *sqlx.DB, log *logrus.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.Logger()

	conn, err := db.Open(c.Context, cfg.PostgresConn)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(cfg, conn, log)
}

// dispatcherFor выбирает канал доставки: Redis, если задан адрес, иначе лог.
func dispatcherFor(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) notify.Dispatcher {
	if cfg.RedisAddr == "" {
		return notify.NewLogDispatcher(log)
	}
	d, err := notify.NewRedisDispatcher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.NotifyChannel)
	if err != nil {
		log.WithError(err).Warn("redis is unavailable, notifications go to the log")
		return notify.NewLogDispatcher(log)
	}
	return d
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.Logger()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.PostgresConn)
	if err != nil {
		return err
	}
	defer conn.Close()

	if c.Bool("migrate") {
		if err := migrations.Run(conn.DB, log); err != nil {
			return err
		}
	}

	storage := db.NewStorage(conn)
	codes := refcode.NewTable(refcode.Defaults())
	if err := codes.Load(ctx, storage); err != nil {
		log.WithError(err).Warn("failed to load reference codes, using defaults")
	}

	dispatcher := dispatcherFor(ctx, cfg, log)
	if rd, ok := dispatcher.(*notify.RedisDispatcher); ok {
		defer rd.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	var notifier notify.Notifier
	if cfg.OutboxSize == 0 {
		notifier = notify.NewInline(dispatcher, log)
	} else {
		outbox := notify.NewOutbox(dispatcher, notify.OutboxConfig{
			Size:       cfg.OutboxSize,
			Workers:    cfg.OutboxWorkers,
			MaxRetries: cfg.OutboxMaxRetries,
			Backoff:    cfg.OutboxBackoff,
		}, log)
		notifier = outbox
		g.Go(func() error {
			return outbox.Run(gctx)
		})
	}

	svc := service.New(service.NewSQLStore(storage), notifier, codes, log)

	scheduler := cron.New()
	expiry := jobs.NewExpiryNotifier(storage, notifier, cfg.ContractExpiryWindowDays, log)
	if err := expiry.Schedule(scheduler, cfg.ContractExpiryCron); err != nil {
		return err
	}
	g.Go(func() error {
		return jobs.RunScheduler(gctx, scheduler)
	})

	h := handlers.NewHandler(svc, log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handlers.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Route("/api", h.Register)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	g.Go(func() error {
		log.WithField("addr", cfg.ServerAddress).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
