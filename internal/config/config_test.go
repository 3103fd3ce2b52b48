package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `
chains:
  - id: 1
    name: ethereum
    rpc_urls: [https://eth-a.example, https://eth-b.example]
    checkpointed: true
    start_block: 19000000
    tracked_entities:
      - address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
        label: usdc
        is_contract: true
        monitor_events: true
      - address: "0x00000000219ab540356cbb839cbe05303d7705fa"
        active: false
  - id: 56
    name: bsc
    active: false
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAINS_FILE", writeRegistry(t, sampleRegistry))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, dbStatementTimeoutDefaultMS, cfg.DB.StatementTimeoutMS)
	assert.Equal(t, dbPoolStatsIntervalDefaultMS, cfg.DB.PoolStatsIntervalMS)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "ingestor", cfg.Redis.StreamPrefix)
	assert.Equal(t, 30*time.Second, cfg.RPC.HealthInterval)
	assert.Equal(t, 30*time.Minute, cfg.Cycle.Period)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.Interval)
	assert.Equal(t, 3, cfg.Orchestrator.BatchSize)
	assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
	assert.Equal(t, int64(1000), cfg.Fetcher.LogMaxBlockRange)
	assert.Equal(t, int64(100), cfg.Ingestor.CheckpointInterval)
	assert.False(t, cfg.Ingestor.TraceInternalCalls)
	assert.Equal(t, 8080, cfg.Server.HealthPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tracing.Enabled)
	require.Len(t, cfg.Chains, 2)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHAINS_FILE", writeRegistry(t, sampleRegistry))
	t.Setenv("DB_URL", "postgres://test:test@db:5432/testdb")
	t.Setenv("REDIS_URL", "redis://redis:6379")
	t.Setenv("ORCHESTRATOR_INTERVAL_MS", "1000")
	t.Setenv("ORCHESTRATOR_BATCH_SIZE", "8")
	t.Setenv("CHECKPOINT_INTERVAL_BLOCKS", "10")
	t.Setenv("TRACE_INTERNAL_CALLS", "true")
	t.Setenv("RPC_RATE_LIMIT_RPS", "12.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ETHEREUM_RPC_URLS", "https://override-a, https://override-b,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://test:test@db:5432/testdb", cfg.DB.URL)
	assert.Equal(t, "redis://redis:6379", cfg.Redis.URL)
	assert.Equal(t, time.Second, cfg.Orchestrator.Interval)
	assert.Equal(t, 8, cfg.Orchestrator.BatchSize)
	assert.Equal(t, int64(10), cfg.Ingestor.CheckpointInterval)
	assert.True(t, cfg.Ingestor.TraceInternalCalls)
	assert.Equal(t, 12.5, cfg.RPC.RateLimitRPS)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://override-a", "https://override-b"}, cfg.Chains[0].RPCURLs)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("CHAINS_FILE", writeRegistry(t, sampleRegistry))
	t.Setenv("ORCHESTRATOR_MAX_RETRIES", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
}

func TestLoad_MissingChainsFile(t *testing.T) {
	t.Setenv("CHAINS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read chains file")
}

func TestLoad_ActiveChainWithoutEndpoints(t *testing.T) {
	t.Setenv("CHAINS_FILE", writeRegistry(t, `
chains:
  - id: 137
    name: polygon
`))

	_, err := Load()
	require.ErrorIs(t, err, ErrNoRPCURLs)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DB:           DBConfig{URL: "postgres://x"},
			Cycle:        CycleConfig{Period: time.Minute},
			Orchestrator: OrchestratorConfig{Interval: time.Second, BatchSize: 1, MaxRetries: 1},
			Fetcher:      FetcherConfig{LogMaxBlockRange: 1},
			Ingestor:     IngestorConfig{CheckpointInterval: 1, TraceMaxDepth: 1},
			Log:          LogConfig{Level: "info"},
			Chains:       []ChainSpec{{ID: 1, Name: "ethereum", RPCURLs: []string{"http://a"}}},
		}
	}
	require.NoError(t, valid().validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		wantMsg string
	}{
		{name: "empty db url", mutate: func(c *Config) { c.DB.URL = "" }, wantMsg: "DB_URL"},
		{name: "zero batch size", mutate: func(c *Config) { c.Orchestrator.BatchSize = 0 }, wantMsg: "ORCHESTRATOR_BATCH_SIZE"},
		{name: "zero retries", mutate: func(c *Config) { c.Orchestrator.MaxRetries = 0 }, wantMsg: "ORCHESTRATOR_MAX_RETRIES"},
		{name: "zero checkpoint interval", mutate: func(c *Config) { c.Ingestor.CheckpointInterval = 0 }, wantMsg: "CHECKPOINT_INTERVAL_BLOCKS"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantMsg: "LOG_LEVEL"},
		{name: "no chains", mutate: func(c *Config) { c.Chains = nil }, wantErr: ErrNoChains},
		{name: "duplicate chain", mutate: func(c *Config) { c.Chains = append(c.Chains, c.Chains[0]) }, wantErr: ErrDuplicateChain},
		{
			name: "bad address",
			mutate: func(c *Config) {
				c.Chains[0].Entities = []EntitySpec{{Address: "0x1234"}}
			},
			wantErr: ErrInvalidAddress,
		},
		{
			name: "inactive chain without endpoints is fine",
			mutate: func(c *Config) {
				inactive := false
				c.Chains = append(c.Chains, ChainSpec{ID: 56, Name: "bsc", Active: &inactive})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestChainSpec_Model(t *testing.T) {
	chains, err := LoadChains(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	eth := chains[0].Model()
	assert.Equal(t, model.ChainID(1), eth.ID)
	assert.True(t, eth.Active)
	assert.True(t, eth.Checkpointed)
	assert.Equal(t, int64(19000000), eth.StartBlock)
	assert.False(t, chains[1].Model().Active)

	entities := chains[0].TrackedEntities()
	require.Len(t, entities, 2)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", entities[0].Address)
	require.NotNil(t, entities[0].Label)
	assert.Equal(t, "usdc", *entities[0].Label)
	assert.True(t, entities[0].MonitorEvents)
	assert.True(t, entities[0].IsActive)
	assert.Nil(t, entities[1].Label)
	assert.False(t, entities[1].IsActive)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "ETHEREUM", envName("ethereum"))
	assert.Equal(t, "ARBITRUM_ONE", envName("arbitrum-one"))
}
