// cmd/replicator/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/atem-replicator/internal/config"
	"github.com/tamzrod/atem-replicator/internal/logging"
	"github.com/tamzrod/atem-replicator/internal/metrics"
	"github.com/tamzrod/atem-replicator/internal/poller"
	"github.com/tamzrod/atem-replicator/internal/writer"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Poll recorder status and replicate it into register memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runReplicator(ctx, args[0])
		},
	}
}

func runReplicator(ctx context.Context, cfgPath string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Replicator.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer closeLog()

	log.Info("starting", zap.String("version", version), zap.Int("devices", len(cfg.Replicator.Devices)))

	reg := metrics.NewRegistry()
	m := metrics.NewAppMetrics(reg)

	if addr := cfg.Replicator.Metrics.Listen; addr != "" {
		srv := serveMetrics(addr, metrics.Handler(reg), log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// ---- writer clients (DATA + STATUS), shared across devices ----
	clients, closeWriters, err := writer.BuildEndpointClients(cfg, log, m.ObserveBreaker)
	if err != nil {
		return fmt.Errorf("writer clients: %w", err)
	}
	defer closeWriters()

	// --------------------
	// Build per-device pipelines (all or nothing)
	// --------------------

	type device struct {
		p  *poller.Poller
		pl *pipeline
	}
	var devices []device

	for _, d := range cfg.Replicator.Devices {
		dlog := log.With(zap.String("device", d.ID))

		// ---- poller ----
		p, closePoller, err := poller.Build(d, log, m.Observer(d.ID))
		if err != nil {
			return err
		}
		defer closePoller()

		// ---- writer plan ----
		plan, err := writer.BuildPlan(d, cfg.Replicator.StatusMemory)
		if err != nil {
			return fmt.Errorf("writer plan (device=%s): %w", d.ID, err)
		}

		pl := &pipeline{
			deviceID: d.ID,
			data:     writer.New(plan, clients, m.ObserveWrite),
			gauge:    m,
			log:      dlog,
		}
		if sw, ok := writer.NewDeviceStatusWriter(plan, clients, m.ObserveWrite); ok {
			pl.status = sw
		}

		devices = append(devices, device{p: p, pl: pl})
		dlog.Info("device pipeline built", zap.Int("targets", len(plan.Targets)), zap.Bool("status", pl.status != nil))
	}

	var wg sync.WaitGroup

	for _, dv := range devices {
		// ---- channel between poller and pipeline ----
		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			dv.pl.run(ctx, out)
		}()
		go func() {
			defer wg.Done()
			dv.p.Run(ctx, out)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")
	wg.Wait()

	return nil
}

func serveMetrics(addr string, h http.Handler, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return srv
}
