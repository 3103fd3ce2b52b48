package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emperorhan/multichain-ingestor/internal/config"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/store"
)

// seedRegistry upserts the configured chains and their tracked entities and
// returns the chain models in file order.
func seedRegistry(ctx context.Context, specs []config.ChainSpec, chains store.ChainRepository, entities store.TrackedEntityRepository, logger *slog.Logger) ([]model.Chain, error) {
	out := make([]model.Chain, 0, len(specs))
	for _, cs := range specs {
		c := cs.Model()
		if err := chains.Upsert(ctx, &c); err != nil {
			return nil, fmt.Errorf("seed chain %s: %w", c.Label(), err)
		}
		tracked := cs.TrackedEntities()
		for i := range tracked {
			if err := entities.Upsert(ctx, &tracked[i]); err != nil {
				return nil, fmt.Errorf("seed entity %s on %s: %w", tracked[i].Address, c.Label(), err)
			}
		}
		logger.Info("chain registered",
			"chain", c.Label(),
			"chain_id", c.ID,
			"active", c.Active,
			"checkpointed", c.Checkpointed,
			"endpoints", len(c.RPCURLs),
			"tracked_entities", len(tracked),
		)
		out = append(out, c)
	}
	return out, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
