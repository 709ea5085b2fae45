package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
)

const mutationLogColumns = "id, operation, player, counterparty, kind, item_name, statements, modified, success, error, request_id, created_at"

// InsertMutationLogs stores a batch of logs in one transaction. Ids already
// present are skipped so a retried flush does not fail.
func (r *SQLPlayerRepository) InsertMutationLogs(ctx context.Context, logs []model.MutationLog) error {
	if len(logs) == 0 {
		return nil
	}

	defer r.lockWrite()()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.d.insertNew("mutation_logs", mutationLogColumns, 12))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		statements, err := json.Marshal(l.Statements)
		if err != nil {
			return fmt.Errorf("failed to encode statements of log %s: %w", l.ID, err)
		}
		createdAt := l.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Operation, l.Player, l.Counterparty, l.Kind, l.ItemName,
			string(statements), l.Modified, l.Success, l.Error, l.RequestID, createdAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert log %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMutationLogs lists logs newest first with pagination.
func (r *SQLPlayerRepository) GetMutationLogs(ctx context.Context, player string, limit, offset int) ([]model.MutationLog, int64, error) {
	defer r.lockRead()()

	where := ""
	var args []any
	if player != "" {
		where = " WHERE player = ? OR counterparty = ?"
		args = append(args, player, player)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, r.d.rebind("SELECT COUNT(*) FROM mutation_logs"+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count mutation logs: %w", err)
	}

	query := r.d.rebind("SELECT " + mutationLogColumns + " FROM mutation_logs" + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?")
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query mutation logs: %w", err)
	}
	defer rows.Close()

	logs := []model.MutationLog{}
	for rows.Next() {
		var (
			l          model.MutationLog
			statements []byte
		)
		if err := rows.Scan(&l.ID, &l.Operation, &l.Player, &l.Counterparty, &l.Kind, &l.ItemName,
			&statements, &l.Modified, &l.Success, &l.Error, &l.RequestID, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan mutation log: %w", err)
		}
		if err := json.Unmarshal(statements, &l.Statements); err != nil {
			return nil, 0, fmt.Errorf("failed to decode statements of log %s: %w", l.ID, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// DeleteLogsOlderThan removes logs created before now minus threshold.
func (r *SQLPlayerRepository) DeleteLogsOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	defer r.lockWrite()()

	cutoff := time.Now().UTC().Add(-threshold)
	result, err := r.db.ExecContext(ctx, r.d.rebind(`DELETE FROM mutation_logs WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old mutation logs: %w", err)
	}
	return result.RowsAffected()
}
