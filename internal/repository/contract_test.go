package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
)

type sqlStore interface {
	PlayerRepository
	MutationLogRepository
}

func seedPlayer(name string) *model.Player {
	lvl, exp := 1, int64(0)
	p := &model.Player{NombreUsuario: name, Creditos: 100}
	p.Normalize()
	p.Inventario.Weapons = []model.Item{{ID: int64p(3), Name: "Espada", Extra: map[string]any{"power": int64(12)}}}
	p.Equipados.Hero = []model.Item{{ID: int64p(1), Name: "Caballero", Level: &lvl, Experience: &exp}}
	return p
}

// runStoreContract exercises the behavior every SQL backend must share.
func runStoreContract(t *testing.T, repo sqlStore) {
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		require.NoError(t, repo.CreatePlayer(ctx, seedPlayer("Ana")))

		got, err := repo.GetPlayer(ctx, "Ana")
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Creditos)
		require.Len(t, got.Inventario.Weapons, 1)
		assert.Equal(t, int64(12), got.Inventario.Weapons[0].Extra["power"])
		assert.NotNil(t, got.Equipados.EpicAbility)
	})

	t.Run("duplicate create", func(t *testing.T) {
		err := repo.CreatePlayer(ctx, seedPlayer("Ana"))
		assert.ErrorIs(t, err, model.ErrPlayerExists)
	})

	t.Run("missing player", func(t *testing.T) {
		_, err := repo.GetPlayer(ctx, "Nadie")
		assert.ErrorIs(t, err, model.ErrPlayerNotFound)
	})

	t.Run("batch write across players", func(t *testing.T) {
		require.NoError(t, repo.CreatePlayer(ctx, seedPlayer("Luis")))
		espada := model.Item{ID: int64p(3), Name: "Espada", Extra: map[string]any{"power": int64(12)}}
		hero := model.Item{ID: int64p(1), Name: "Caballero"}.WithProgress(2, 30)

		res, err := repo.BatchWrite(ctx, []model.Statement{
			model.RemoveFromList("Luis", model.ContainerInventario, model.KindWeapon, espada.Match()),
			model.AppendToList("Ana", model.ContainerInventario, model.KindArmor, model.Item{ID: int64p(8), Name: "Cota"}),
			model.IncrementField("Ana", model.FieldCreditos, -150),
			model.ReplaceListElement("Ana", model.ContainerEquipados, model.KindHero, hero.Match(), hero),
			model.ReplaceListElement("Ana", model.ContainerInventario, model.KindHero, hero.Match(), hero),
			model.AppendToList("Nadie", model.ContainerInventario, model.KindItem, model.Item{Name: "Poción"}),
		})
		require.NoError(t, err)
		assert.Equal(t, 6, res.Statements)
		assert.Equal(t, 4, res.Matched)
		assert.Equal(t, 4, res.Modified)

		luis, err := repo.GetPlayer(ctx, "Luis")
		require.NoError(t, err)
		assert.Empty(t, luis.Inventario.Weapons)

		ana, err := repo.GetPlayer(ctx, "Ana")
		require.NoError(t, err)
		assert.Equal(t, int64(-50), ana.Creditos)
		assert.Equal(t, "Cota", ana.Inventario.Armors[0].Name)
		assert.Equal(t, 2, ana.Equipados.Hero[0].HeroLevel())
		assert.Equal(t, int64(30), ana.Equipados.Hero[0].HeroExperience())
	})

	t.Run("invalid statement writes nothing", func(t *testing.T) {
		res, err := repo.BatchWrite(ctx, []model.Statement{
			model.IncrementField("Ana", model.FieldCreditos, 10),
			{Op: model.OpIncrementField, PlayerKey: "Ana", Path: "avatar", Delta: 1},
		})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Zero(t, res.Modified)

		ana, err := repo.GetPlayer(ctx, "Ana")
		require.NoError(t, err)
		assert.Equal(t, int64(-50), ana.Creditos)
	})

	t.Run("mutation logs", func(t *testing.T) {
		now := time.Now().UTC()
		logs := []model.MutationLog{
			{ID: "log-1", Operation: model.OperationEquip, Player: "Ana", Kind: "weapons", ItemName: "Espada",
				Statements: []model.Statement{model.IncrementField("Ana", model.FieldCreditos, 5)},
				Modified: 1, Success: true, CreatedAt: now.Add(-48 * time.Hour)},
			{ID: "log-2", Operation: model.OperationTransfer, Player: "Luis", Counterparty: "Ana",
				Statements: []model.Statement{}, Success: false, Error: "item not found", CreatedAt: now.Add(-time.Minute)},
			{ID: "log-3", Operation: model.OperationReward, Player: "Eva", Statements: []model.Statement{}, Success: true, CreatedAt: now},
		}
		require.NoError(t, repo.InsertMutationLogs(ctx, logs))
		require.NoError(t, repo.InsertMutationLogs(ctx, logs[:1]), "re-inserting a flushed log is ignored")

		all, total, err := repo.GetMutationLogs(ctx, "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, all, 3)
		assert.Equal(t, "log-3", all[0].ID)

		ana, total, err := repo.GetMutationLogs(ctx, "Ana", 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, ana, 1)
		assert.Equal(t, "log-2", ana[0].ID)
		assert.Equal(t, "item not found", ana[0].Error)

		older, _, err := repo.GetMutationLogs(ctx, "Ana", 1, 1)
		require.NoError(t, err)
		require.Len(t, older, 1)
		require.Len(t, older[0].Statements, 1)
		assert.Equal(t, int64(5), older[0].Statements[0].Delta)

		deleted, err := repo.DeleteLogsOlderThan(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats["total_players"])
	})
}
