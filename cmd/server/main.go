package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/matchforge/jip-backend/internal/banlist"
	"github.com/matchforge/jip-backend/internal/config"
	"github.com/matchforge/jip-backend/internal/discovery"
	"github.com/matchforge/jip-backend/internal/httpapi"
	"github.com/matchforge/jip-backend/internal/hub"
	"github.com/matchforge/jip-backend/internal/session"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg.Server.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub discovery.Publisher = discovery.NewMemory()
	if cfg.Database.DSN != "" {
		store, err := discovery.Open(cfg.Database.DSN, log)
		if err != nil {
			log.Fatal("open discovery store", zap.Error(err))
		}
		pub = store
	} else {
		log.Info("no database dsn configured, keeping listings in memory")
	}

	h := hub.NewHub(ctx, session.Deps{
		Clock:        clock.New(),
		Bans:         banlist.NewStatic(cfg.Banned),
		Discovery:    pub,
		Log:          log,
		TickInterval: cfg.Server.TickInterval,
	})

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: httpapi.SetupRoutes(h, cfg.Match.EngineConfig(), log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	log, err := zcfg.Build()
	if err != nil {
		log = zap.NewNop()
	}
	return log
}
