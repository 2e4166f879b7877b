package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/lead-reports/internal/config"
	"github.com/AngelCh415/lead-reports/internal/httpx"
	"github.com/AngelCh415/lead-reports/internal/ingest"
	"github.com/AngelCh415/lead-reports/internal/metrics"
	"github.com/AngelCh415/lead-reports/internal/store"
	"github.com/AngelCh415/lead-reports/internal/utils"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	table, err := config.LoadGroupTable(cfg.GroupsFile)
	if err != nil {
		logger.Error("group table", slog.String("file", cfg.GroupsFile), slog.String("err", err.Error()))
		os.Exit(1)
	}

	st := store.NewMemoryStore(cfg.SessionTTL)
	norm := ingest.NewNormalizer(ingest.NewGroupResolver(table), ingest.WithTimestampColumns(cfg.TimestampColumns...))
	etl := ingest.NewETL(norm, st, logger, cfg)
	mSvc := metrics.NewService(st)

	r := httpx.NewRouter(logger, st, etl, mSvc, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go janitor(ctx, logger, st, time.Minute)

	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port), slog.Int("owners", len(table)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.String("err", err.Error()))
	}
}

// janitor evicts idle sessions until ctx is done.
func janitor(ctx context.Context, log *slog.Logger, st *store.MemoryStore, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				log.Info("sessions evicted", slog.Int("count", n))
			}
			utils.ActiveSessions.Set(float64(st.Len()))
		}
	}
}
