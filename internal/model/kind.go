package model

import (
	"fmt"
	"strings"
)

// SlotKind identifies one of the per-kind lists inside an equipment container.
// Its value is the literal document key of that list.
type SlotKind string

const (
	KindWeapon      SlotKind = "weapons"
	KindArmor       SlotKind = "armors"
	KindItem        SlotKind = "items"
	KindEpicAbility SlotKind = "epicAbility"
	KindHero        SlotKind = "hero"
)

// SlotKinds is the fixed order used whenever an item is searched across kinds.
var SlotKinds = []SlotKind{KindWeapon, KindArmor, KindItem, KindEpicAbility, KindHero}

// Container document keys on a player record.
const (
	ContainerInventario = "inventario"
	ContainerEquipados  = "equipados"
)

// Scalar document keys on a player record.
const (
	FieldNombreUsuario = "nombreUsuario"
	FieldCreditos      = "creditos"
	FieldExp           = "exp"
)

var kindAliases = map[string]SlotKind{
	"weapons":     KindWeapon,
	"weapon":      KindWeapon,
	"armors":      KindArmor,
	"armor":       KindArmor,
	"items":       KindItem,
	"item":        KindItem,
	"epicability": KindEpicAbility,
	"epic":        KindEpicAbility,
	"epics":       KindEpicAbility,
	"hero":        KindHero,
	"heroes":      KindHero,
}

// ParseSlotKind resolves a document key or a common alias into a SlotKind.
func ParseSlotKind(s string) (SlotKind, error) {
	if kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown slot kind %q", ErrInvalidInput, s)
}

// Valid reports whether k is one of the five known kinds.
func (k SlotKind) Valid() bool {
	switch k {
	case KindWeapon, KindArmor, KindItem, KindEpicAbility, KindHero:
		return true
	}
	return false
}

func (k SlotKind) String() string {
	return string(k)
}

// ListPath returns the dotted document path of the kind's list inside container.
func ListPath(container string, kind SlotKind) string {
	return container + "." + string(kind)
}
