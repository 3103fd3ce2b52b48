package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/cache"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/config"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline"
	"github.com/emperorhan/multichain-ingestor/internal/store/mocks"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeDBStatsProvider struct {
	stats sql.DBStats
}

func (f fakeDBStatsProvider) Stats() sql.DBStats { return f.stats }

type panicDBStatsProvider struct{}

func (panicDBStatsProvider) Stats() sql.DBStats { panic("db stats temporarily unavailable") }

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (r *recordingAlerter) Send(_ context.Context, a alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func testGauges(prefix string) dbPoolStatsGauges {
	gv := func(name string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: prefix + "_" + name}, []string{"pool"})
	}
	return dbPoolStatsGauges{
		open:         gv("open"),
		inUse:        gv("in_use"),
		idle:         gv("idle"),
		waitCount:    gv("wait_count"),
		waitDuration: gv("wait_duration_seconds"),
	}
}

func readGaugeValue(t *testing.T, gauge *prometheus.GaugeVec) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, gauge.WithLabelValues(dbPoolLabel).Write(m))
	return m.GetGauge().GetValue()
}

func TestCollectDBPoolStats_RecordsGauges(t *testing.T) {
	gauges := testGauges("test_db_pool")
	provider := fakeDBStatsProvider{stats: sql.DBStats{
		OpenConnections: 10,
		InUse:           3,
		Idle:            7,
		WaitCount:       13,
		WaitDuration:    1500 * time.Millisecond,
	}}

	_, err := collectDBPoolStats(provider, gauges)
	require.NoError(t, err)

	assert.Equal(t, 10.0, readGaugeValue(t, gauges.open))
	assert.Equal(t, 3.0, readGaugeValue(t, gauges.inUse))
	assert.Equal(t, 7.0, readGaugeValue(t, gauges.idle))
	assert.Equal(t, 13.0, readGaugeValue(t, gauges.waitCount))
	assert.Equal(t, 1.5, readGaugeValue(t, gauges.waitDuration))
}

func TestCollectDBPoolStats_ReturnsErrorOnPanic(t *testing.T) {
	_, err := collectDBPoolStats(panicDBStatsProvider{}, testGauges("test_db_pool_panic"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db pool stats collection panicked")
}

func TestCollectDBPoolStats_NilProvider(t *testing.T) {
	_, err := collectDBPoolStats(nil, testGauges("test_db_pool_nil"))
	require.Error(t, err)
}

func TestPoolUnderPressure(t *testing.T) {
	assert.True(t, poolUnderPressure(sql.DBStats{MaxOpenConnections: 10, InUse: 9}))
	assert.False(t, poolUnderPressure(sql.DBStats{MaxOpenConnections: 10, InUse: 8}))
	assert.False(t, poolUnderPressure(sql.DBStats{MaxOpenConnections: 0, InUse: 100}))
}

func TestRunDBPoolStats_AlertsUnderPressure(t *testing.T) {
	alerter := &recordingAlerter{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runDBPoolStats(ctx, fakeDBStatsProvider{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 9}}, 5*time.Millisecond, alerter, slog.Default())
	}()

	require.Eventually(t, func() bool { return alerter.count() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, alert.AlertTypeDBPoolPressure, alerter.alerts[0].Type)
}

func TestRunDBPoolStats_DisabledByZeroInterval(t *testing.T) {
	require.NoError(t, runDBPoolStats(context.Background(), fakeDBStatsProvider{}, 0, &recordingAlerter{}, slog.Default()))
}

func TestHealthHandler(t *testing.T) {
	registry := pipeline.NewHealthRegistry(2)
	registry.Get("ethereum").RecordSuccess()
	mux := newHealthMux(healthSources{registry: registry}, slog.Default())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Chains, 1)
	assert.Equal(t, "ethereum", body.Chains[0].Chain)

	registry.Get("bsc").RecordFailure()
	registry.Get("bsc").RecordFailure()

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
}

type fixedCycle struct {
	id      int64
	started time.Time
}

func (c fixedCycle) CurrentCycleID() (int64, bool) { return c.id, c.id > 0 }
func (c fixedCycle) StartedAt() time.Time          { return c.started }

type fixedEndpoints map[model.ChainID][]endpointpool.EndpointStatus

func (f fixedEndpoints) Status(id model.ChainID) []endpointpool.EndpointStatus { return f[id] }

func TestHealthHandler_CycleAndEndpoints(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := healthSources{
		registry: pipeline.NewHealthRegistry(3),
		cycles:   fixedCycle{id: 12, started: started},
		endpoints: fixedEndpoints{
			1: {{Index: 0, URL: "https://rpc-a.example.com", Healthy: true, Current: true}},
		},
		chains: []model.Chain{{ID: 1, Name: "ethereum"}, {ID: 56, Name: "bsc"}},
	}

	rec := httptest.NewRecorder()
	newHealthMux(src, slog.Default()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Cycle)
	assert.Equal(t, int64(12), body.Cycle.ID)
	assert.True(t, started.Equal(body.Cycle.StartedAt))
	require.Len(t, body.Endpoints, 1)
	assert.Equal(t, model.Chain{ID: 1, Name: "ethereum"}.Label(), body.Endpoints[0].Chain)
	assert.True(t, body.Endpoints[0].Endpoints[0].Current)
}

func TestHealthHandler_NoCycleYet(t *testing.T) {
	src := healthSources{registry: pipeline.NewHealthRegistry(3), cycles: fixedCycle{}}
	resp, healthy := src.snapshot()
	assert.True(t, healthy)
	assert.Nil(t, resp.Cycle)
	assert.Empty(t, resp.Endpoints)
}

func TestMetricsEndpointServed(t *testing.T) {
	mux := newHealthMux(healthSources{registry: pipeline.NewHealthRegistry(1)}, slog.Default())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSeedRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	chains := mocks.NewMockChainRepository(ctrl)
	entities := mocks.NewMockTrackedEntityRepository(ctrl)
	inactive := false

	specs := []config.ChainSpec{
		{
			ID: 1, Name: "ethereum", RPCURLs: []string{"http://a"}, Checkpointed: true,
			Entities: []config.EntitySpec{{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", MonitorEvents: true}},
		},
		{ID: 56, Name: "bsc", Active: &inactive},
	}

	gomock.InOrder(
		chains.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *model.Chain) error {
			assert.Equal(t, model.ChainID(1), c.ID)
			assert.True(t, c.Checkpointed)
			return nil
		}),
		entities.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *model.TrackedEntity) error {
			assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", e.Address)
			assert.True(t, e.MonitorEvents)
			return nil
		}),
		chains.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil),
	)

	out, err := seedRegistry(context.Background(), specs, chains, entities, slog.Default())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Active)
	assert.False(t, out[1].Active)
}

func TestSeedRegistry_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	chains := mocks.NewMockChainRepository(ctrl)
	entities := mocks.NewMockTrackedEntityRepository(ctrl)

	chains.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err := seedRegistry(context.Background(), []config.ChainSpec{{ID: 1, Name: "ethereum"}}, chains, entities, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed chain ethereum")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestIgnoreCanceled(t *testing.T) {
	assert.NoError(t, ignoreCanceled(context.Canceled))
	assert.NoError(t, ignoreCanceled(nil))
	boom := errors.New("boom")
	assert.Equal(t, boom, ignoreCanceled(boom))
}

func TestBlockCacheCapacity(t *testing.T) {
	cfg := &config.Config{Ingestor: config.IngestorConfig{TipVerifyDepth: 64}, Chains: make([]config.ChainSpec, 10)}
	assert.Equal(t, 2560, blockCacheCapacity(cfg))

	cfg.Chains = cfg.Chains[:1]
	assert.Equal(t, 1024, blockCacheCapacity(cfg))
}

func TestReprocess_UnknownChain(t *testing.T) {
	a := &app{logger: slog.Default()}
	err := a.reprocess(context.Background(), "solana", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no checkpointed chain named "solana"`)
}

func TestBuildCacheAndBus_NoRedisConfigured(t *testing.T) {
	a := &app{cfg: &config.Config{}, logger: slog.Default()}
	blockCache, publisher := a.buildCacheAndBus(context.Background())
	assert.IsType(t, &cache.BlockHashCache{}, blockCache)
	assert.Nil(t, publisher)
	assert.Empty(t, a.closers)
}

func TestBuildCacheAndBus_UnreachableRedisDegrades(t *testing.T) {
	a := &app{
		cfg:    &config.Config{Redis: config.RedisConfig{URL: "redis://127.0.0.1:1/0", BlockCacheTTL: time.Minute}},
		logger: slog.Default(),
	}
	blockCache, publisher := a.buildCacheAndBus(context.Background())
	require.NotNil(t, blockCache)
	assert.IsType(t, &cache.BlockHashCache{}, blockCache)
	assert.Nil(t, publisher)
	assert.Empty(t, a.closers)
}

func TestBuildCacheAndBus_MalformedURLDegrades(t *testing.T) {
	a := &app{cfg: &config.Config{Redis: config.RedisConfig{URL: "not a url"}}, logger: slog.Default()}
	blockCache, publisher := a.buildCacheAndBus(context.Background())
	assert.IsType(t, &cache.BlockHashCache{}, blockCache)
	assert.Nil(t, publisher)
}
