package service

import (
	"context"
	"math"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/cache"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
)

// Pagination limits for log listings.
const (
	DefaultLogLimit = 20
	MaxLogLimit     = 100
)

// LogSink receives mutation logs as they happen.
type LogSink interface {
	Record(ctx context.Context, entry model.MutationLog) error
}

// DirectLogSink writes each log straight to the repository.
type DirectLogSink struct {
	repo repository.MutationLogRepository
}

// NewDirectLogSink creates a sink without buffering.
func NewDirectLogSink(repo repository.MutationLogRepository) *DirectLogSink {
	return &DirectLogSink{repo: repo}
}

// Record stores one log.
func (s *DirectLogSink) Record(ctx context.Context, entry model.MutationLog) error {
	return s.repo.InsertMutationLogs(ctx, []model.MutationLog{entry})
}

var (
	_ LogSink = (*DirectLogSink)(nil)
	_ LogSink = (*cache.RedisLogBuffer)(nil)
)

// CreateFlushFunc creates a flush function for the Redis log buffer.
func CreateFlushFunc(repo repository.MutationLogRepository) cache.FlushFunc {
	return func(ctx context.Context, logs []model.MutationLog) error {
		return repo.InsertMutationLogs(ctx, logs)
	}
}

// LogPage is one page of a log listing.
type LogPage struct {
	Data  []model.MutationLog `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// LogService lists recorded mutation logs.
type LogService struct {
	repo repository.MutationLogRepository
}

// NewLogService creates a new log service.
func NewLogService(repo repository.MutationLogRepository) *LogService {
	return &LogService{repo: repo}
}

// ListLogs returns logs newest first. player filters on either side of the
// operation; page is 1-based and out-of-range values are clamped.
func (s *LogService) ListLogs(ctx context.Context, player string, page, limit int) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxLogLimit {
		limit = DefaultLogLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}

	logs, total, err := s.repo.GetMutationLogs(ctx, player, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &LogPage{Data: logs, Total: total, Page: page, Limit: limit}, nil
}
