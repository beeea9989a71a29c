package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"reviewflow/config"
	"reviewflow/db"
	"reviewflow/event"
	"reviewflow/httpapi"
	"reviewflow/migrations"
	"reviewflow/regional"
	"reviewflow/team"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	ready, err := db.SchemaReady(ctx, pool)
	if err != nil {
		log.Fatalf("check schema: %v", err)
	}
	if !ready {
		if err := db.ApplyMigrations(ctx, pool, migrations.FS); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
		log.Printf("schema applied")
	}

	repo := event.NewRepository()
	notifier := regional.NewClient(cfg.RegionalEndpoints, cfg.RegionalTimeout)

	assignments := event.NewAssignmentService(pool, repo, cfg.DefaultBatchSize)
	reviews := event.NewReviewService(pool, repo, notifier)
	requeues := event.NewRequeueService(pool, repo, cfg.LeaseTTL)

	server := httpapi.New(assignments, reviews, requeues, team.NewRepository(pool))
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("api listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// In-process sweep cadence; /api/v1/internal/trigger-requeue stays available
	// for on-demand runs from an external scheduler.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RequeueInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				report := requeues.RequeueExpired(gctx)
				if report.Processed > 0 || report.Errors > 0 {
					log.Printf("lease sweep: processed=%d requeued=%d errors=%d",
						report.Processed, report.Requeued, report.Errors)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("shutdown: %v", err)
		os.Exit(1)
	}
	log.Printf("shutdown complete")
}
