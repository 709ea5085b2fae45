package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/cache"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
)

func int64p(v int64) *int64 { return &v }

func newPlayer(name string, credits int64) *model.Player {
	p := &model.Player{NombreUsuario: name, Creditos: credits}
	p.Normalize()
	return p
}

type PlayerServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	repo  *repository.SQLPlayerRepository
	cache *cache.MemoryCache
	sink  *memorySink
	svc   *PlayerService
}

func (s *PlayerServiceTestSuite) SetupTest() {
	repo, err := repository.NewSQLitePlayerRepository(filepath.Join(s.T().TempDir(), "service.db"))
	s.Require().NoError(err)
	s.repo = repo
	s.cache = cache.NewMemoryCache(100, time.Minute)
	s.sink = &memorySink{}

	s.svc = NewPlayerService(repo)
	s.svc.SetCache(s.cache, time.Minute)
	s.svc.SetLogSink(s.sink)
	s.ctx = logger.WithRequestID(context.Background(), "req-1")

	lvl, exp := 1, int64(0)
	ana := newPlayer("Ana", 100)
	ana.Inventario.Weapons = []model.Item{{ID: int64p(3), Name: "Espada", Extra: map[string]any{"power": int64(12)}}}
	ana.Equipados.Hero = []model.Item{{ID: int64p(1), Name: "Caballero", Level: &lvl, Experience: &exp}}

	luis := newPlayer("Luis", 50)
	luis.Equipados.Weapons = []model.Item{{ID: int64p(7), Name: "Hacha"}}
	luis.Inventario.Armors = []model.Item{{ID: int64p(9), Name: "Cota"}}

	_, err = s.svc.CreatePlayers(s.ctx, []*model.Player{ana, luis})
	s.Require().NoError(err)
}

func (s *PlayerServiceTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *PlayerServiceTestSuite) player(name string) *model.Player {
	p, err := s.repo.GetPlayer(context.Background(), name)
	s.Require().NoError(err)
	return p
}

func (s *PlayerServiceTestSuite) TestGetPlayerIsCachedAndInvalidated() {
	ana, err := s.svc.GetPlayer(s.ctx, " Ana ")
	s.Require().NoError(err)
	s.Equal(int64(100), ana.Creditos)

	ok, _ := s.cache.Exists(s.ctx, cache.PlayerKey("Ana"))
	s.True(ok)

	_, err = s.svc.Equip(s.ctx, "Ana", model.KindWeapon, "espada")
	s.Require().NoError(err)

	ok, _ = s.cache.Exists(s.ctx, cache.PlayerKey("Ana"))
	s.False(ok, "writes drop the cached snapshot")

	ana, err = s.svc.GetPlayer(s.ctx, "Ana")
	s.Require().NoError(err)
	s.Empty(ana.Inventario.Weapons)
	s.Require().Len(ana.Equipados.Weapons, 1)
	s.Equal(int64(12), ana.Equipados.Weapons[0].Extra["power"])
}

func (s *PlayerServiceTestSuite) TestGetPlayerErrors() {
	_, err := s.svc.GetPlayer(s.ctx, "Nadie")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.svc.GetPlayer(s.ctx, "  ")
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *PlayerServiceTestSuite) TestGetEquippedHero() {
	hero, err := s.svc.GetEquippedHero(s.ctx, "Ana")
	s.Require().NoError(err)
	s.Equal("Caballero", hero.Name)

	_, err = s.svc.GetEquippedHero(s.ctx, "Luis")
	s.ErrorIs(err, model.ErrItemNotFound)
}

func (s *PlayerServiceTestSuite) TestCreatePlayersSkipsExisting() {
	res, err := s.svc.CreatePlayers(s.ctx, []*model.Player{newPlayer("Ana", 0), {NombreUsuario: "Eva"}})
	s.Require().NoError(err)
	s.Equal([]string{"Eva"}, res.Created)
	s.Equal([]string{"Ana"}, res.Skipped)

	eva := s.player("Eva")
	s.Equal(model.RolJugador, eva.Rol)
	s.NotNil(eva.Equipados.Hero)

	_, err = s.svc.CreatePlayers(s.ctx, []*model.Player{newPlayer("Ana", 0)})
	s.ErrorIs(err, model.ErrPlayerExists)

	_, err = s.svc.CreatePlayers(s.ctx, []*model.Player{{NombreUsuario: ""}})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *PlayerServiceTestSuite) TestEquipAndUnequip() {
	res, err := s.svc.Equip(s.ctx, "Ana", model.KindWeapon, "ESPADA")
	s.Require().NoError(err)
	s.Equal(2, res.Result.Modified)
	s.Equal("Espada", res.Item.Name)

	_, err = s.svc.Equip(s.ctx, "Ana", model.KindWeapon, "Espada")
	s.ErrorIs(err, model.ErrItemNotFound)

	_, err = s.svc.Unequip(s.ctx, "Ana", model.KindWeapon, "Espada")
	s.Require().NoError(err)

	ana := s.player("Ana")
	s.Len(ana.Inventario.Weapons, 1)
	s.Empty(ana.Equipados.Weapons)

	logs := s.sink.all()
	s.Require().Len(logs, 2)
	s.Equal(model.OperationEquip, logs[0].Operation)
	s.Equal(model.OperationUnequip, logs[1].Operation)
	s.Equal("req-1", logs[0].RequestID)
	s.True(logs[0].Success)
	s.NotEmpty(logs[0].ID)
}

func (s *PlayerServiceTestSuite) TestTransferItem() {
	res, err := s.svc.TransferItem(s.ctx, "Luis", "Ana", "hacha")
	s.Require().NoError(err)
	s.Equal(model.KindWeapon, res.Kind)

	s.Empty(s.player("Luis").Equipados.Weapons)
	ana := s.player("Ana")
	s.Require().Len(ana.Inventario.Weapons, 2)
	s.Equal("Hacha", ana.Inventario.Weapons[1].Name)

	logs := s.sink.all()
	s.Require().Len(logs, 1)
	s.Equal("Luis", logs[0].Player)
	s.Equal("Ana", logs[0].Counterparty)

	_, err = s.svc.TransferItem(s.ctx, "Luis", "Ana", "Hacha")
	s.ErrorIs(err, model.ErrItemNotFound)

	_, err = s.svc.TransferItem(s.ctx, "Luis", "Nadie", "Cota")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *PlayerServiceTestSuite) TestTransferRejectsDuplicate() {
	_, err := s.svc.AddToInventory(s.ctx, "Luis", model.KindWeapon, model.Item{ID: int64p(3), Name: "Espada"})
	s.Require().NoError(err)

	_, err = s.svc.TransferItem(s.ctx, "Luis", "Ana", "Espada")
	s.ErrorIs(err, model.ErrDuplicateItem)
	s.Len(s.player("Luis").Inventario.Weapons, 1, "nothing written")
}

func (s *PlayerServiceTestSuite) TestAddToInventory() {
	res, err := s.svc.AddToInventory(s.ctx, "Ana", model.KindEpicAbility, model.Item{ID: int64p(4), Name: "Tormenta"})
	s.Require().NoError(err)
	s.Equal(1, res.Result.Modified)
	s.Len(s.player("Ana").Inventario.EpicAbility, 1)

	_, err = s.svc.AddToInventory(s.ctx, "Ana", model.KindHero, model.Item{ID: int64p(1), Name: "Caballero"})
	s.ErrorIs(err, model.ErrDuplicateItem)

	_, err = s.svc.AddToInventory(s.ctx, "Ana", model.SlotKind("capes"), model.Item{Name: "Capa"})
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.svc.AddToInventory(s.ctx, "Nadie", model.KindItem, model.Item{Name: "Poción"})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *PlayerServiceTestSuite) TestIncrementCredits() {
	balance, err := s.svc.IncrementCredits(s.ctx, "Ana", 50)
	s.Require().NoError(err)
	s.Equal(int64(150), balance)

	balance, err = s.svc.IncrementCredits(s.ctx, "Ana", -200)
	s.Require().NoError(err)
	s.Equal(int64(-50), balance)

	_, err = s.svc.IncrementCredits(s.ctx, "Nadie", 5)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *PlayerServiceTestSuite) TestApplyReward() {
	res, err := s.svc.ApplyReward(s.ctx, model.Reward{
		Target:  "Ana",
		Credits: 40,
		Exp:     150,
		WonItems: []model.WonItem{
			{OriginPlayer: "Luis", ItemName: "Hacha"},
			{OriginPlayer: "Fantasma", ItemName: "Arco"},
		},
	})
	s.Require().NoError(err)
	s.Equal(1, res.LevelsGained)
	s.Require().NotNil(res.Hero)
	s.Equal(2, res.Hero.HeroLevel())
	s.Equal(int64(50), res.Hero.HeroExperience())
	s.Len(res.Won, 1)
	s.Len(res.Skipped, 1)

	ana := s.player("Ana")
	s.Equal(int64(140), ana.Creditos)
	s.Equal(2, ana.Equipados.Hero[0].HeroLevel())
	s.Equal("Hacha", ana.Inventario.Weapons[1].Name)
	s.Empty(s.player("Luis").Equipados.Weapons)
}

func (s *PlayerServiceTestSuite) TestApplyRewardNoOp() {
	_, err := s.svc.ApplyReward(s.ctx, model.Reward{Target: "Luis"})
	s.ErrorIs(err, model.ErrNoOpReward)

	_, err = s.svc.ApplyReward(s.ctx, model.Reward{Target: "Nadie", Credits: 10})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func TestPlayerServiceSuite(t *testing.T) {
	suite.Run(t, new(PlayerServiceTestSuite))
}

func TestNewPlayerServiceRequiresRepository(t *testing.T) {
	assert.Nil(t, NewPlayerService(nil))
}

func TestPartialBatchIsLoggedAndReturned(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPlayerRepo)
	sink := &memorySink{}
	svc := NewPlayerService(repo)
	svc.SetLogSink(sink)

	ana := newPlayer("Ana", 0)
	ana.Inventario.Items = []model.Item{{ID: int64p(2), Name: "Antorcha"}}
	repo.On("GetPlayer", mock.Anything, "Ana").Return(ana, nil)
	repo.On("BatchWrite", mock.Anything, mock.Anything).
		Return(&model.BatchResult{Statements: 2, Matched: 1, Modified: 1}, errors.New("connection reset"))

	_, err := svc.Equip(ctx, "Ana", model.KindItem, "Antorcha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	logs := sink.all()
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Equal(t, 1, logs[0].Modified)
	assert.Equal(t, "connection reset", logs[0].Error)
	repo.AssertExpectations(t)
}

func TestApplyRewardOriginLookupFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPlayerRepo)
	svc := NewPlayerService(repo)

	repo.On("GetPlayer", mock.Anything, "Ana").Return(newPlayer("Ana", 0), nil)
	repo.On("GetPlayer", mock.Anything, "Luis").Return(nil, errors.New("timeout"))

	_, err := svc.ApplyReward(ctx, model.Reward{Target: "Ana", Credits: 5,
		WonItems: []model.WonItem{{OriginPlayer: "Luis", ItemName: "Hacha"}}})
	assert.EqualError(t, err, "timeout")
	repo.AssertNotCalled(t, "BatchWrite", mock.Anything, mock.Anything)
}
