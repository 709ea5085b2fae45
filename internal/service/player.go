package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/cache"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/engine"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/metrics"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/uid"
)

// DefaultCacheTTL bounds how long a player snapshot is served from cache.
const DefaultCacheTTL = 30 * time.Second

// MutationResult describes a write the service performed.
type MutationResult struct {
	Operation    string             `json:"operation"`
	Kind         model.SlotKind     `json:"kind,omitempty"`
	Item         *model.Item        `json:"item,omitempty"`
	Statements   []model.Statement  `json:"statements"`
	Result       *model.BatchResult `json:"result"`
	Hero         *model.Item        `json:"hero,omitempty"`
	LevelsGained int                `json:"levelsGained,omitempty"`
	Won          []model.WonItem    `json:"won,omitempty"`
	Skipped      []string           `json:"skipped,omitempty"`
}

// CreateResult lists which players a create call inserted.
type CreateResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// PlayerService runs engine operations against the player store.
type PlayerService struct {
	players  repository.PlayerRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logs     LogSink
}

// NewPlayerService creates a new player service.
// Returns nil if players is nil (required dependency).
func NewPlayerService(players repository.PlayerRepository) *PlayerService {
	if players == nil {
		return nil
	}
	return &PlayerService{players: players}
}

// SetCache enables read-through caching of player snapshots.
func (s *PlayerService) SetCache(c cache.Cache, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s.cache = c
	s.cacheTTL = ttl
}

// SetLogSink sets where mutation logs are recorded.
func (s *PlayerService) SetLogSink(sink LogSink) {
	s.logs = sink
}

func playerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: nombreUsuario is required", model.ErrInvalidInput)
	}
	return name, nil
}

// GetPlayer returns a player snapshot, from cache when possible.
func (s *PlayerService) GetPlayer(ctx context.Context, name string) (*model.Player, error) {
	name, err := playerName(name)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.players.GetPlayer(ctx, name)
	}

	key := cache.PlayerKey(name)
	data, err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() ([]byte, error) {
		p, err := s.players.GetPlayer(ctx, name)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	})
	if err != nil {
		return nil, err
	}

	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		logger.FromContext(ctx).Warn("Discarding undecodable cached player", "player", name, "error", err)
		_ = s.cache.Delete(ctx, key)
		return s.players.GetPlayer(ctx, name)
	}
	p.Inventario.Normalize()
	p.Equipados.Normalize()
	return &p, nil
}

// GetEquippedHero returns the first equipped hero.
func (s *PlayerService) GetEquippedHero(ctx context.Context, name string) (*model.Item, error) {
	p, err := s.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(p.Equipados.Hero) == 0 {
		return nil, fmt.Errorf("%w: %s has no equipped hero", model.ErrItemNotFound, p.NombreUsuario)
	}
	hero := p.Equipados.Hero[0]
	return &hero, nil
}

// CreatePlayers inserts every player whose name is free. It fails with
// model.ErrPlayerExists only when all of them were taken.
func (s *PlayerService) CreatePlayers(ctx context.Context, players []*model.Player) (*CreateResult, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players given", model.ErrInvalidInput)
	}
	for _, p := range players {
		if p == nil || strings.TrimSpace(p.NombreUsuario) == "" {
			return nil, fmt.Errorf("%w: nombreUsuario is required", model.ErrInvalidInput)
		}
	}

	log := logger.FromContext(ctx)
	res := &CreateResult{Created: []string{}, Skipped: []string{}}
	for _, p := range players {
		p.Normalize()
		err := s.players.CreatePlayer(ctx, p)
		switch {
		case errors.Is(err, model.ErrPlayerExists):
			res.Skipped = append(res.Skipped, p.NombreUsuario)
		case err != nil:
			return res, fmt.Errorf("failed to create %s: %w", p.NombreUsuario, err)
		default:
			res.Created = append(res.Created, p.NombreUsuario)
			s.invalidate(ctx, p.NombreUsuario)
		}
	}

	log.Info("Players created", "created", len(res.Created), "skipped", len(res.Skipped))
	if len(res.Created) == 0 {
		return res, fmt.Errorf("%w: %s", model.ErrPlayerExists, strings.Join(res.Skipped, ", "))
	}
	return res, nil
}

// AddToInventory appends an item to the player's inventory list of kind.
func (s *PlayerService) AddToInventory(ctx context.Context, name string, kind model.SlotKind, item model.Item) (*MutationResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown slot kind %q", model.ErrInvalidInput, kind)
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: item name is required", model.ErrInvalidInput)
	}
	p, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if item.ID != nil && p.Owns(kind, *item.ID) {
		return nil, fmt.Errorf("%w: %s already owns %s id %d", model.ErrDuplicateItem, p.NombreUsuario, kind, *item.ID)
	}

	stmts := []model.Statement{model.AppendToList(p.NombreUsuario, model.ContainerInventario, kind, item)}
	entry := model.MutationLog{Operation: model.OperationAddItem, Player: p.NombreUsuario, Kind: kind.String(), ItemName: item.Name}
	res, err := s.execute(ctx, entry, stmts)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Operation: entry.Operation, Kind: kind, Item: &item, Statements: stmts, Result: res}, nil
}

// IncrementCredits adds delta to the player's credits and returns the new balance.
func (s *PlayerService) IncrementCredits(ctx context.Context, name string, delta int64) (int64, error) {
	name, err := playerName(name)
	if err != nil {
		return 0, err
	}

	stmts := []model.Statement{model.IncrementField(name, model.FieldCreditos, delta)}
	entry := model.MutationLog{Operation: model.OperationCredits, Player: name}
	res, err := s.execute(ctx, entry, stmts)
	if err != nil {
		return 0, err
	}
	if res.Matched == 0 {
		return 0, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, name)
	}
	if delta > 0 {
		metrics.CreditsGranted.Add(float64(delta))
	}

	p, err := s.players.GetPlayer(ctx, name)
	if err != nil {
		return 0, err
	}
	return p.Creditos, nil
}

// Equip moves an item of kind from the player's inventory to their equipped gear.
func (s *PlayerService) Equip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*MutationResult, error) {
	p, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	move, err := engine.Equip(p, kind, itemName)
	if err != nil {
		return nil, err
	}
	result, err := s.applyMove(ctx, model.OperationEquip, p.NombreUsuario, "", move)
	if err != nil {
		return nil, err
	}
	metrics.ItemsEquipped.WithLabelValues(kind.String()).Inc()
	return result, nil
}

// Unequip moves an item of kind from the player's equipped gear back to their inventory.
func (s *PlayerService) Unequip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*MutationResult, error) {
	p, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	move, err := engine.Unequip(p, kind, itemName)
	if err != nil {
		return nil, err
	}
	result, err := s.applyMove(ctx, model.OperationUnequip, p.NombreUsuario, "", move)
	if err != nil {
		return nil, err
	}
	metrics.ItemsUnequipped.WithLabelValues(kind.String()).Inc()
	return result, nil
}

// TransferItem moves the named item from origin to target's inventory.
func (s *PlayerService) TransferItem(ctx context.Context, originName, targetName, itemName string) (*MutationResult, error) {
	origin, err := s.load(ctx, originName)
	if err != nil {
		return nil, err
	}
	target, err := s.load(ctx, targetName)
	if err != nil {
		return nil, err
	}
	move, err := engine.TransferItem(origin, target, itemName)
	if err != nil {
		return nil, err
	}
	result, err := s.applyMove(ctx, model.OperationTransfer, origin.NombreUsuario, target.NombreUsuario, move)
	if err != nil {
		return nil, err
	}
	metrics.ItemsTransferred.WithLabelValues(move.Kind.String()).Inc()
	return result, nil
}

// ApplyReward grants credits, hero experience and won items to reward.Target.
// Won items whose origin player does not exist are skipped.
func (s *PlayerService) ApplyReward(ctx context.Context, reward model.Reward) (*MutationResult, error) {
	target, err := s.load(ctx, reward.Target)
	if err != nil {
		metrics.RewardsApplied.WithLabelValues("error").Inc()
		return nil, err
	}
	reward.Target = target.NombreUsuario

	origins := make(map[string]*model.Player)
	for _, name := range reward.Origins() {
		p, err := s.players.GetPlayer(ctx, name)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			metrics.RewardsApplied.WithLabelValues("error").Inc()
			return nil, err
		}
		origins[name] = p
	}

	plan, err := engine.ApplyReward(target, reward, origins)
	if err != nil {
		metrics.RewardsApplied.WithLabelValues("error").Inc()
		return nil, err
	}
	log := logger.FromContext(ctx)
	for _, reason := range plan.Skipped {
		log.Warn("Reward entry skipped", "player", target.NombreUsuario, "reason", reason)
	}

	entry := model.MutationLog{Operation: model.OperationReward, Player: target.NombreUsuario}
	res, err := s.execute(ctx, entry, plan.Statements)
	if err != nil {
		metrics.RewardsApplied.WithLabelValues("error").Inc()
		return nil, err
	}
	if !res.Applied() {
		metrics.RewardsApplied.WithLabelValues("noop").Inc()
		return nil, model.ErrNoOpReward
	}

	metrics.RewardsApplied.WithLabelValues("applied").Inc()
	if reward.Credits > 0 {
		metrics.CreditsGranted.Add(float64(reward.Credits))
	}
	if plan.LevelsGained > 0 {
		metrics.HeroLevelUps.Add(float64(plan.LevelsGained))
	}

	return &MutationResult{
		Operation:    entry.Operation,
		Statements:   plan.Statements,
		Result:       res,
		Hero:         plan.Hero,
		LevelsGained: plan.LevelsGained,
		Won:          plan.Won,
		Skipped:      plan.Skipped,
	}, nil
}

// load reads the store directly; mutations never plan against a cached snapshot.
func (s *PlayerService) load(ctx context.Context, name string) (*model.Player, error) {
	name, err := playerName(name)
	if err != nil {
		return nil, err
	}
	return s.players.GetPlayer(ctx, name)
}

func (s *PlayerService) applyMove(ctx context.Context, op, player, counterparty string, move *engine.Move) (*MutationResult, error) {
	entry := model.MutationLog{
		Operation:    op,
		Player:       player,
		Counterparty: counterparty,
		Kind:         move.Kind.String(),
		ItemName:     move.Item.Name,
	}
	res, err := s.execute(ctx, entry, move.Statements)
	if err != nil {
		return nil, err
	}
	item := move.Item
	return &MutationResult{Operation: op, Kind: move.Kind, Item: &item, Statements: move.Statements, Result: res}, nil
}

// execute writes stmts, drops cached snapshots of every touched player and
// records the outcome, partial or not, in the mutation log.
func (s *PlayerService) execute(ctx context.Context, entry model.MutationLog, stmts []model.Statement) (*model.BatchResult, error) {
	res, err := s.players.BatchWrite(ctx, stmts)
	if res == nil {
		res = &model.BatchResult{Statements: len(stmts)}
	}

	touched := make(map[string]struct{}, 2)
	for _, st := range stmts {
		touched[st.PlayerKey] = struct{}{}
	}
	for name := range touched {
		s.invalidate(ctx, name)
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	for _, st := range stmts {
		metrics.BatchStatements.WithLabelValues(string(st.Op), result).Inc()
	}

	entry.ID = uid.New()
	entry.Statements = stmts
	entry.Modified = res.Modified
	entry.Success = err == nil
	if err != nil {
		entry.Error = err.Error()
	}
	if id, ok := logger.RequestIDFromContext(ctx); ok {
		entry.RequestID = id
	}
	entry.CreatedAt = time.Now().UTC()
	s.record(ctx, entry)

	if err != nil {
		logger.FromContext(ctx).Error("Batch write failed",
			"operation", entry.Operation,
			"player", entry.Player,
			"statements", res.Statements,
			"modified", res.Modified,
			"error", err)
		return res, fmt.Errorf("failed to write %s: %w", entry.Operation, err)
	}
	return res, nil
}

func (s *PlayerService) invalidate(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.PlayerKey(name)); err != nil {
		logger.FromContext(ctx).Warn("Cache invalidation failed", "player", name, "error", err)
	}
}

func (s *PlayerService) record(ctx context.Context, entry model.MutationLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("Failed to record mutation log", "operation", entry.Operation, "error", err)
	}
}
