package repository

import (
	"context"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
)

// PlayerRepository defines player document access.
type PlayerRepository interface {
	// GetPlayer loads one player document. Missing players yield model.ErrPlayerNotFound.
	GetPlayer(ctx context.Context, name string) (*model.Player, error)

	// CreatePlayer inserts a new document. Taken names yield model.ErrPlayerExists.
	CreatePlayer(ctx context.Context, p *model.Player) error

	// BatchWrite applies statements in order, each on its own, with no atomicity
	// across statements. On failure the result still counts what was applied.
	BatchWrite(ctx context.Context, stmts []model.Statement) (*model.BatchResult, error)

	// GetStats returns statistics about the player store.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// MutationLogRepository defines mutation log storage.
type MutationLogRepository interface {
	// InsertMutationLogs stores a batch of log entries.
	InsertMutationLogs(ctx context.Context, logs []model.MutationLog) error

	// GetMutationLogs lists logs newest first, optionally only those involving player.
	GetMutationLogs(ctx context.Context, player string, limit, offset int) ([]model.MutationLog, int64, error)

	// DeleteLogsOlderThan removes logs created before now minus threshold.
	DeleteLogsOlderThan(ctx context.Context, threshold time.Duration) (int64, error)

	// Close closes the repository connection.
	Close() error
}
