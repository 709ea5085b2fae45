package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (m *mockPlayerRepo) GetPlayer(ctx context.Context, name string) (*model.Player, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*model.Player)
	return p, args.Error(1)
}

func (m *mockPlayerRepo) CreatePlayer(ctx context.Context, p *model.Player) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlayerRepo) BatchWrite(ctx context.Context, stmts []model.Statement) (*model.BatchResult, error) {
	args := m.Called(ctx, stmts)
	res, _ := args.Get(0).(*model.BatchResult)
	return res, args.Error(1)
}

func (m *mockPlayerRepo) GetStats(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(map[string]interface{})
	return stats, args.Error(1)
}

func (m *mockPlayerRepo) Close() error {
	return m.Called().Error(0)
}

type mockLogRepo struct {
	mock.Mock
}

func (m *mockLogRepo) InsertMutationLogs(ctx context.Context, logs []model.MutationLog) error {
	return m.Called(ctx, logs).Error(0)
}

func (m *mockLogRepo) GetMutationLogs(ctx context.Context, player string, limit, offset int) ([]model.MutationLog, int64, error) {
	args := m.Called(ctx, player, limit, offset)
	logs, _ := args.Get(0).([]model.MutationLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

func (m *mockLogRepo) DeleteLogsOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLogRepo) Close() error {
	return m.Called().Error(0)
}

// memorySink collects recorded logs.
type memorySink struct {
	mu      sync.Mutex
	entries []model.MutationLog
}

func (s *memorySink) Record(_ context.Context, entry model.MutationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) all() []model.MutationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MutationLog(nil), s.entries...)
}
