package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/service"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/apierror"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/response"
)

// PlayerService is what the player handlers need from the service layer.
type PlayerService interface {
	GetPlayer(ctx context.Context, name string) (*model.Player, error)
	GetEquippedHero(ctx context.Context, name string) (*model.Item, error)
	CreatePlayers(ctx context.Context, players []*model.Player) (*service.CreateResult, error)
	AddToInventory(ctx context.Context, name string, kind model.SlotKind, item model.Item) (*service.MutationResult, error)
	IncrementCredits(ctx context.Context, name string, delta int64) (int64, error)
	Equip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*service.MutationResult, error)
	Unequip(ctx context.Context, name string, kind model.SlotKind, itemName string) (*service.MutationResult, error)
	TransferItem(ctx context.Context, origin, target, itemName string) (*service.MutationResult, error)
	ApplyReward(ctx context.Context, reward model.Reward) (*service.MutationResult, error)
}

var _ PlayerService = (*service.PlayerService)(nil)

// LegacyBodyFields names the body key each per-kind equip route reads.
var LegacyBodyFields = map[model.SlotKind]string{
	model.KindWeapon:      "weaponName",
	model.KindArmor:       "armorName",
	model.KindItem:        "itemName",
	model.KindEpicAbility: "epicName",
	model.KindHero:        "heroName",
}

type equipRequest struct {
	Name string `json:"name" validate:"required"`
}

type creditsRequest struct {
	Creditos *int64 `json:"creditos" validate:"required"`
}

type transferRequest struct {
	OriginUser string `json:"originUser" validate:"required"`
	TargetUser string `json:"targetUser" validate:"required"`
	ItemName   string `json:"itemName" validate:"required"`
}

type rewardBody struct {
	PlayerRewarded string `json:"playerRewarded" validate:"required"`
	Credits        *int64 `json:"credits" validate:"required"`
	Exp            *int64 `json:"exp" validate:"required"`
	HeroID         *int64 `json:"heroId"`
	HeroName       string `json:"heroName"`
}

type rewardRequest struct {
	Rewards *rewardBody     `json:"Rewards" validate:"required"`
	WonItem []model.WonItem `json:"WonItem" validate:"dive"`
}

// PlayerHandler handles player-related HTTP requests.
type PlayerHandler struct {
	players PlayerService
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(players PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

func slotKindParam(r *http.Request) (model.SlotKind, error) {
	kind, err := model.ParseSlotKind(chi.URLParam(r, "categoria"))
	if err != nil {
		return "", apierror.BadRequest(err.Error())
	}
	return kind, nil
}

// GetPlayer handles GET /api/v1/usuarios/{nombreUsuario}
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.GetPlayer(r.Context(), chi.URLParam(r, "nombreUsuario"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// GetEquippedHero handles GET /api/v1/usuarios/{nombreUsuario}/hero
func (h *PlayerHandler) GetEquippedHero(w http.ResponseWriter, r *http.Request) {
	hero, err := h.players.GetEquippedHero(r.Context(), chi.URLParam(r, "nombreUsuario"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, hero)
}

// CreatePlayers handles POST /api/v1/usuarios/create with one player or an array.
func (h *PlayerHandler) CreatePlayers(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, apierror.BadRequest("failed to read request body"))
		return
	}

	var players []*model.Player
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &players)
	} else {
		var p model.Player
		err = json.Unmarshal(trimmed, &p)
		players = []*model.Player{&p}
	}
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeError(w, r, apierror.BadRequest(err.Error()))
			return
		}
		writeError(w, r, apierror.BadRequest("invalid JSON"))
		return
	}
	if len(players) == 0 {
		writeError(w, r, apierror.BadRequest("at least one player is required"))
		return
	}
	for _, p := range players {
		if p == nil {
			writeError(w, r, apierror.BadRequest("player entries must be objects"))
			return
		}
		if err := validateStruct(p); err != nil {
			writeError(w, r, err)
			return
		}
	}

	res, err := h.players.CreatePlayers(r.Context(), players)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, res)
}

// AddToInventory handles POST /api/v1/usuarios/{nombreUsuario}/inventario/{categoria}
func (h *PlayerHandler) AddToInventory(w http.ResponseWriter, r *http.Request) {
	kind, err := slotKindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var item model.Item
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.players.AddToInventory(r.Context(), chi.URLParam(r, "nombreUsuario"), kind, item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// IncrementCredits handles PATCH /api/v1/usuarios/{nombreUsuario}/creditos
func (h *PlayerHandler) IncrementCredits(w http.ResponseWriter, r *http.Request) {
	var req creditsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	name := chi.URLParam(r, "nombreUsuario")
	balance, err := h.players.IncrementCredits(r.Context(), name, *req.Creditos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"nombreUsuario": name,
		"creditos":      balance,
	})
}

// Equip handles PUT /api/v1/usuarios/{nombreUsuario}/equip/{categoria}
func (h *PlayerHandler) Equip(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, true)
}

// Unequip handles PUT /api/v1/usuarios/{nombreUsuario}/unequip/{categoria}
func (h *PlayerHandler) Unequip(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, false)
}

func (h *PlayerHandler) move(w http.ResponseWriter, r *http.Request, equip bool) {
	kind, err := slotKindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req equipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.respondMove(w, r, kind, req.Name, equip)
}

// LegacyMove serves the per-kind routes (equipWeapon, unequipHero, ...), whose
// body carries the item name under a kind-specific key.
func (h *PlayerHandler) LegacyMove(kind model.SlotKind, equip bool) http.HandlerFunc {
	field := LegacyBodyFields[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		var name string
		if raw, ok := body[field]; !ok || json.Unmarshal(raw, &name) != nil || name == "" {
			writeError(w, r, apierror.ValidationError("request validation failed",
				apierror.FieldError{Field: field, Message: "failed on the 'required' rule"}))
			return
		}
		h.respondMove(w, r, kind, name, equip)
	}
}

func (h *PlayerHandler) respondMove(w http.ResponseWriter, r *http.Request, kind model.SlotKind, itemName string, equip bool) {
	name := chi.URLParam(r, "nombreUsuario")
	var (
		res *service.MutationResult
		err error
	)
	if equip {
		res, err = h.players.Equip(r.Context(), name, kind, itemName)
	} else {
		res, err = h.players.Unequip(r.Context(), name, kind, itemName)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// TransferItem handles PATCH /api/v1/usuarios/transfer-item
func (h *PlayerHandler) TransferItem(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.players.TransferItem(r.Context(), req.OriginUser, req.TargetUser, req.ItemName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// ApplyReward handles POST /api/v1/usuarios/rewards
func (h *PlayerHandler) ApplyReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	reward := model.Reward{
		Target:   req.Rewards.PlayerRewarded,
		Credits:  *req.Rewards.Credits,
		Exp:      *req.Rewards.Exp,
		HeroID:   req.Rewards.HeroID,
		HeroName: req.Rewards.HeroName,
		WonItems: req.WonItem,
	}
	res, err := h.players.ApplyReward(r.Context(), reward)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, res)
}
