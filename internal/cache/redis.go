package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/metrics"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxBatchSize    = 100
	FlushTimeout    = 30 * time.Second
	ShutdownTimeout = 2 * time.Minute
)

// FlushFunc is called to persist buffered logs.
type FlushFunc func(ctx context.Context, logs []model.MutationLog) error

// releaseLockScript deletes the flush lock only if this buffer still holds it.
var releaseLockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisLogBuffer is a write-behind buffer for mutation logs. Records are
// appended to a Redis list and flushed in batches, oldest first. A lock key
// keeps instances sharing the list from flushing the same batch twice.
type RedisLogBuffer struct {
	client      *redis.Client
	flushFunc   FlushFunc
	flushTicker *time.Ticker
	stopFlush   chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	keyPrefix   string
	log         *slog.Logger
}

// RedisBufferConfig holds configuration for the log buffer.
type RedisBufferConfig struct {
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisLogBuffer starts a buffer on an existing client. The client is owned by the caller.
func NewRedisLogBuffer(client *redis.Client, cfg RedisBufferConfig, flushFunc FlushFunc) *RedisLogBuffer {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "inventario:mutation_logs"
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	b := &RedisLogBuffer{
		client:      client,
		flushFunc:   flushFunc,
		flushTicker: time.NewTicker(interval),
		stopFlush:   make(chan struct{}),
		done:        make(chan struct{}),
		keyPrefix:   keyPrefix,
		log:         logger.Component("log-buffer"),
	}

	go b.backgroundFlush()

	b.log.Info("Started", "prefix", keyPrefix, "flush", interval, "batch", MaxBatchSize)
	return b
}

func (b *RedisLogBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

func (b *RedisLogBuffer) lockKey() string {
	return b.keyPrefix + ":flush_lock"
}

// Record buffers one mutation log.
func (b *RedisLogBuffer) Record(ctx context.Context, entry model.MutationLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode mutation log: %w", err)
	}
	n, err := b.client.RPush(ctx, b.bufferKey(), data).Result()
	if err != nil {
		return fmt.Errorf("failed to buffer mutation log: %w", err)
	}
	metrics.MutationLogsBuffered.Set(float64(n))
	return nil
}

// Count returns the number of buffered logs.
func (b *RedisLogBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.LLen(ctx, b.bufferKey()).Result()
}

// FlushBatch writes up to MaxBatchSize of the oldest logs and removes them from
// the list once persisted. It returns how many list entries were consumed, 0
// when another flush holds the lock.
func (b *RedisLogBuffer) FlushBatch(ctx context.Context) (int, error) {
	token := uuid.NewString()
	acquired, err := b.client.SetNX(ctx, b.lockKey(), token, FlushTimeout).Result()
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, nil
	}
	defer releaseLockScript.Run(context.Background(), b.client, []string{b.lockKey()}, token)

	raw, err := b.client.LRange(ctx, b.bufferKey(), 0, MaxBatchSize-1).Result()
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}

	logs := make([]model.MutationLog, 0, len(raw))
	for _, data := range raw {
		var entry model.MutationLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			b.log.Error("Dropping undecodable log", "error", err)
			continue
		}
		logs = append(logs, entry)
	}

	if len(logs) > 0 {
		if err := b.flushFunc(ctx, logs); err != nil {
			return 0, fmt.Errorf("failed to flush mutation logs: %w", err)
		}
	}

	// Producers only append, so the flushed batch is still the head of the list.
	if err := b.client.LTrim(ctx, b.bufferKey(), int64(len(raw)), -1).Err(); err != nil {
		b.log.Error("Failed to trim flushed logs", "error", err)
	}
	if n, err := b.Count(ctx); err == nil {
		metrics.MutationLogsBuffered.Set(float64(n))
	}

	b.log.Debug("Flushed logs", "count", len(logs), "dropped", len(raw)-len(logs))
	return len(raw), nil
}

// Flush writes every buffered log.
func (b *RedisLogBuffer) Flush(ctx context.Context) error {
	for {
		flushed, err := b.FlushBatch(ctx)
		if err != nil {
			return err
		}
		if flushed == 0 {
			return nil
		}
	}
}

func (b *RedisLogBuffer) backgroundFlush() {
	defer close(b.done)
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if _, err := b.FlushBatch(ctx); err != nil {
				b.log.Error("Background flush error", "error", err)
			}
			cancel()
		case <-b.stopFlush:
			b.log.Info("Shutdown: flushing remaining logs")
			ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			if err := b.Flush(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				b.log.Error("Shutdown flush error", "error", err)
			}
			cancel()
			b.log.Info("Shutdown flush complete")
			return
		}
	}
}

// Close stops the background loop after a final flush.
func (b *RedisLogBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		close(b.stopFlush)
	})
	<-b.done
	return nil
}
