package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/service"
)

type mockPlayerService struct {
	mock.Mock
}

func (m *mockPlayerService) GetPlayer(ctx context.Context, name string) (*model.Player, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*model.Player)
	return p, args.Error(1)
}

func (m *mockPlayerService) GetEquippedHero(ctx context.Context, name string) (*model.Item, error) {
	args := m.Called(ctx, name)
	it, _ := args.Get(0).(*model.Item)
	return it, args.Error(1)
}

func (m *mockPlayerService) CreatePlayers(ctx context.Context, players []*model.Player) (*service.CreateResult, error) {
	args := m.Called(ctx, players)
	res, _ := args.Get(0).(*service.CreateResult)
	return res, args.Error(1)
}

func (m *mockPlayerService) AddToInventory(ctx context.Context, name string, kind model.SlotKind, item model.Item) (*service.MutationResult, error) {
	args := m.Called(ctx, name, kind, item)
	res, _ := args.Get(0).(*service.MutationResult)
	return res, args.Error(1)
}

func (m *mockPlayerService) IncrementCredits(ctx context.Context, name string, delta int64) (int64, error) {
	args := m.Called(ctx, name, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPlayerService) Equip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*service.MutationResult, error) {
	args := m.Called(ctx, name, kind, itemName)
	res, _ := args.Get(0).(*service.MutationResult)
	return res, args.Error(1)
}

func (m *mockPlayerService) Unequip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*service.MutationResult, error) {
	args := m.Called(ctx, name, kind, itemName)
	res, _ := args.Get(0).(*service.MutationResult)
	return res, args.Error(1)
}

func (m *mockPlayerService) TransferItem(ctx context.Context, origin, target, itemName string) (*service.MutationResult, error) {
	args := m.Called(ctx, origin, target, itemName)
	res, _ := args.Get(0).(*service.MutationResult)
	return res, args.Error(1)
}

func (m *mockPlayerService) ApplyReward(ctx context.Context, reward model.Reward) (*service.MutationResult, error) {
	args := m.Called(ctx, reward)
	res, _ := args.Get(0).(*service.MutationResult)
	return res, args.Error(1)
}

func newTestRouter(h *PlayerHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/usuarios", func(r chi.Router) {
		r.Post("/create", h.CreatePlayers)
		r.Post("/rewards", h.ApplyReward)
		r.Patch("/transfer-item", h.TransferItem)
		r.Route("/{nombreUsuario}", func(r chi.Router) {
			r.Get("/", h.GetPlayer)
			r.Get("/hero", h.GetEquippedHero)
			r.Post("/inventario/{categoria}", h.AddToInventory)
			r.Patch("/creditos", h.IncrementCredits)
			r.Put("/equip/{categoria}", h.Equip)
			r.Put("/unequip/{categoria}", h.Unequip)
			r.Put("/equipWeapon", h.LegacyMove(model.KindWeapon, true))
			r.Put("/unequipHero", h.LegacyMove(model.KindHero, false))
		})
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func errorCode(env map[string]any) string {
	e, _ := env["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestGetPlayer(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))

	ana := &model.Player{NombreUsuario: "Ana", Creditos: 10}
	ana.Normalize()
	svc.On("GetPlayer", mock.Anything, "Ana").Return(ana, nil)
	svc.On("GetPlayer", mock.Anything, "Nadie").Return(nil, model.ErrPlayerNotFound)

	rec, env := do(t, router, http.MethodGet, "/usuarios/Ana", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]any)
	assert.Equal(t, "Ana", data["nombreUsuario"])
	assert.Equal(t, []any{}, data["inventario"].(map[string]any)["weapons"])

	rec, env = do(t, router, http.MethodGet, "/usuarios/Nadie", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PLAYER_NOT_FOUND", errorCode(env))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
		{model.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{model.ErrDuplicateItem, http.StatusConflict, "CONFLICT"},
		{model.ErrNoOpReward, http.StatusUnprocessableEntity, "NO_OP_REWARD"},
		{errors.New("mongo: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := new(mockPlayerService)
			svc.On("GetEquippedHero", mock.Anything, "Ana").Return(nil, tt.err)

			rec, env := do(t, newTestRouter(NewPlayerHandler(svc)), http.MethodGet, "/usuarios/Ana/hero", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(env))
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestCreatePlayersAcceptsObjectOrArray(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))

	svc.On("CreatePlayers", mock.Anything, mock.MatchedBy(func(ps []*model.Player) bool {
		return len(ps) == 1 && ps[0].NombreUsuario == "Eva"
	})).Return(&service.CreateResult{Created: []string{"Eva"}, Skipped: []string{}}, nil).Once()
	svc.On("CreatePlayers", mock.Anything, mock.MatchedBy(func(ps []*model.Player) bool {
		return len(ps) == 2
	})).Return(nil, model.ErrPlayerExists).Once()

	rec, _ := do(t, router, http.MethodPost, "/usuarios/create", `{"nombreUsuario":"Eva","creditos":5}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/usuarios/create", `[{"nombreUsuario":"Ana"},{"nombreUsuario":"Luis"}]`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(env))

	rec, env = do(t, router, http.MethodPost, "/usuarios/create", `{"avatar":"x.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(env))

	rec, _ = do(t, router, http.MethodPost, "/usuarios/create", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestAddToInventory(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))

	id := int64(4)
	want := model.Item{ID: &id, Name: "Tormenta", Extra: map[string]any{"damage": int64(30)}}
	svc.On("AddToInventory", mock.Anything, "Ana", model.KindEpicAbility, want).
		Return(&service.MutationResult{Operation: model.OperationAddItem, Result: &model.BatchResult{Statements: 1, Matched: 1, Modified: 1}}, nil)

	rec, _ := do(t, router, http.MethodPost, "/usuarios/Ana/inventario/epic", `{"id":4,"name":"Tormenta","damage":30}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/usuarios/Ana/inventario/capes", `{"name":"Capa"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/usuarios/Ana/inventario/weapons", `{"id":"x","name":"Capa"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestIncrementCredits(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))
	svc.On("IncrementCredits", mock.Anything, "Ana", int64(-30)).Return(int64(70), nil)

	rec, env := do(t, router, http.MethodPatch, "/usuarios/Ana/creditos", `{"creditos":-30}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(70), env["data"].(map[string]any)["creditos"])

	rec, _ = do(t, router, http.MethodPatch, "/usuarios/Ana/creditos", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPatch, "/usuarios/Ana/creditos", `{"creditos":"10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "IncrementCredits", 1)
}

func TestEquipRoutes(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))
	ok := &service.MutationResult{Operation: model.OperationEquip}

	svc.On("Equip", mock.Anything, "Ana", model.KindArmor, "Cota").Return(ok, nil)
	svc.On("Equip", mock.Anything, "Ana", model.KindWeapon, "Espada").Return(ok, nil)
	svc.On("Unequip", mock.Anything, "Ana", model.KindHero, "Caballero").Return(ok, nil)
	svc.On("Unequip", mock.Anything, "Ana", model.KindItem, "Antorcha").Return(nil, model.ErrItemNotFound)

	rec, _ := do(t, router, http.MethodPut, "/usuarios/Ana/equip/armor", `{"name":"Cota"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/usuarios/Ana/equipWeapon", `{"weaponName":"Espada"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/usuarios/Ana/unequipHero", `{"heroName":"Caballero"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, router, http.MethodPut, "/usuarios/Ana/unequip/items", `{"name":"Antorcha"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(env))

	rec, env = do(t, router, http.MethodPut, "/usuarios/Ana/equipWeapon", `{"name":"Espada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := env["error"].(map[string]any)["details"].([]any)
	assert.Equal(t, "weaponName", details[0].(map[string]any)["field"])

	rec, _ = do(t, router, http.MethodPut, "/usuarios/Ana/equip/armor", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestTransferItem(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))
	svc.On("TransferItem", mock.Anything, "Luis", "Ana", "Hacha").Return(nil, model.ErrDuplicateItem)

	rec, _ := do(t, router, http.MethodPatch, "/usuarios/transfer-item", `{"originUser":"Luis","targetUser":"Ana","itemName":"Hacha"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := do(t, router, http.MethodPatch, "/usuarios/transfer-item", `{"originUser":"Luis","itemName":"Hacha"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := env["error"].(map[string]any)["details"].([]any)
	assert.Equal(t, "targetUser", details[0].(map[string]any)["field"])
}

func TestApplyReward(t *testing.T) {
	svc := new(mockPlayerService)
	router := newTestRouter(NewPlayerHandler(svc))

	heroID := int64(1)
	want := model.Reward{
		Target:   "Ana",
		Credits:  -5,
		Exp:      120,
		HeroID:   &heroID,
		WonItems: []model.WonItem{{OriginPlayer: "Luis", ItemName: "Hacha"}},
	}
	svc.On("ApplyReward", mock.Anything, want).Return(&service.MutationResult{Operation: model.OperationReward, LevelsGained: 1}, nil)

	body := `{"Rewards":{"playerRewarded":"Ana","credits":-5,"exp":120,"heroId":1},"WonItem":[{"originPlayer":"Luis","itemName":"Hacha"}]}`
	rec, env := do(t, router, http.MethodPost, "/usuarios/rewards", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), env["data"].(map[string]any)["levelsGained"])

	for _, bad := range []string{
		`{"Rewards":{"playerRewarded":"Ana","exp":0}}`,
		`{"Rewards":{"playerRewarded":"Ana","credits":1.5,"exp":0}}`,
		`{"Rewards":{"playerRewarded":"Ana","credits":1,"exp":0},"WonItem":[{"originPlayer":"Luis"}]}`,
		`{"WonItem":[]}`,
	} {
		rec, _ := do(t, router, http.MethodPost, "/usuarios/rewards", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
	svc.AssertNumberOfCalls(t, "ApplyReward", 1)
}
