package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const dbPoolLabel = "primary"

type dbStatsProvider interface {
	Stats() sql.DBStats
}

type dbPoolStatsGauges struct {
	open         *prometheus.GaugeVec
	inUse        *prometheus.GaugeVec
	idle         *prometheus.GaugeVec
	waitCount    *prometheus.GaugeVec
	waitDuration *prometheus.GaugeVec
}

func defaultDBPoolGauges() dbPoolStatsGauges {
	return dbPoolStatsGauges{
		open:         metrics.DBPoolOpen,
		inUse:        metrics.DBPoolInUse,
		idle:         metrics.DBPoolIdle,
		waitCount:    metrics.DBPoolWaitCount,
		waitDuration: metrics.DBPoolWaitDurationSeconds,
	}
}

// poolPressureRatio is the in-use share of MaxOpenConnections that raises an alert.
const poolPressureRatio = 0.8

func collectDBPoolStats(db dbStatsProvider, gauges dbPoolStatsGauges) (stats sql.DBStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("db pool stats collection panicked: %v", r)
		}
	}()
	if db == nil {
		return stats, fmt.Errorf("db stats provider is nil")
	}
	stats = db.Stats()
	gauges.open.WithLabelValues(dbPoolLabel).Set(float64(stats.OpenConnections))
	gauges.inUse.WithLabelValues(dbPoolLabel).Set(float64(stats.InUse))
	gauges.idle.WithLabelValues(dbPoolLabel).Set(float64(stats.Idle))
	gauges.waitCount.WithLabelValues(dbPoolLabel).Set(float64(stats.WaitCount))
	gauges.waitDuration.WithLabelValues(dbPoolLabel).Set(stats.WaitDuration.Seconds())
	return stats, nil
}

func poolUnderPressure(stats sql.DBStats) bool {
	if stats.MaxOpenConnections <= 0 {
		return false
	}
	return float64(stats.InUse)/float64(stats.MaxOpenConnections) > poolPressureRatio
}

// runDBPoolStats samples pool statistics until ctx is done and alerts when
// the pool is close to exhaustion. The alerter applies its own cooldown.
func runDBPoolStats(ctx context.Context, db dbStatsProvider, interval time.Duration, alerter alert.Alerter, logger *slog.Logger) error {
	if interval <= 0 {
		return nil
	}
	gauges := defaultDBPoolGauges()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sample := func() {
		stats, err := collectDBPoolStats(db, gauges)
		if err != nil {
			logger.Warn("failed to collect db pool stats", "error", err)
			return
		}
		if !poolUnderPressure(stats) {
			return
		}
		if err := alerter.Send(ctx, alert.Alert{
			Type:    alert.AlertTypeDBPoolPressure,
			Title:   "Database pool near exhaustion",
			Message: fmt.Sprintf("%d of %d connections in use", stats.InUse, stats.MaxOpenConnections),
			Fields: map[string]string{
				"wait_count": fmt.Sprintf("%d", stats.WaitCount),
			},
		}); err != nil {
			logger.Warn("failed to send db pool alert", "error", err)
		}
	}

	sample()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sample()
		}
	}
}

type cycleStatus interface {
	CurrentCycleID() (int64, bool)
	StartedAt() time.Time
}

type endpointStatus interface {
	Status(chainID model.ChainID) []endpointpool.EndpointStatus
}

// healthSources feeds /healthz. cycles and endpoints may be nil.
type healthSources struct {
	registry  *pipeline.HealthRegistry
	cycles    cycleStatus
	endpoints endpointStatus
	chains    []model.Chain
}

type cycleView struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

type chainEndpointsView struct {
	Chain     string                        `json:"chain"`
	Endpoints []endpointpool.EndpointStatus `json:"endpoints"`
}

type healthResponse struct {
	Status    string                    `json:"status"`
	Cycle     *cycleView                `json:"cycle,omitempty"`
	Chains    []pipeline.HealthSnapshot `json:"chains"`
	Endpoints []chainEndpointsView      `json:"endpoints,omitempty"`
}

func (s healthSources) snapshot() (healthResponse, bool) {
	resp := healthResponse{Status: "ok", Chains: s.registry.Snapshots()}
	healthy := s.registry.Healthy()
	if !healthy {
		resp.Status = "unhealthy"
	}
	if s.cycles != nil {
		if id, ok := s.cycles.CurrentCycleID(); ok {
			resp.Cycle = &cycleView{ID: id, StartedAt: s.cycles.StartedAt()}
		}
	}
	if s.endpoints != nil {
		for _, c := range s.chains {
			if eps := s.endpoints.Status(c.ID); len(eps) > 0 {
				resp.Endpoints = append(resp.Endpoints, chainEndpointsView{Chain: c.Label(), Endpoints: eps})
			}
		}
	}
	return resp, healthy
}

func healthHandler(src healthSources, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, healthy := src.snapshot()
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	}
}

func newHealthMux(src healthSources, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler(src, logger))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func runHealthServer(ctx context.Context, port int, src healthSources, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newHealthMux(src, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()

	logger.Info("health server started", "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
