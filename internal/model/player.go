package model

import "strings"

// Roles a player document may carry.
const (
	RolJugador       = "jugador"
	RolAdministrador = "administrador"
)

// Container holds one ordered list per slot kind. Within a container no two
// entries of the same kind share an id.
type Container struct {
	Weapons     []Item `json:"weapons" bson:"weapons"`
	Armors      []Item `json:"armors" bson:"armors"`
	Items       []Item `json:"items" bson:"items"`
	EpicAbility []Item `json:"epicAbility" bson:"epicAbility"`
	Hero        []Item `json:"hero" bson:"hero"`
}

// List returns the list stored under kind, nil for an unknown kind.
func (c *Container) List(kind SlotKind) []Item {
	switch kind {
	case KindWeapon:
		return c.Weapons
	case KindArmor:
		return c.Armors
	case KindItem:
		return c.Items
	case KindEpicAbility:
		return c.EpicAbility
	case KindHero:
		return c.Hero
	}
	return nil
}

// SetList replaces the list stored under kind. Unknown kinds are ignored.
func (c *Container) SetList(kind SlotKind, items []Item) {
	switch kind {
	case KindWeapon:
		c.Weapons = items
	case KindArmor:
		c.Armors = items
	case KindItem:
		c.Items = items
	case KindEpicAbility:
		c.EpicAbility = items
	case KindHero:
		c.Hero = items
	}
}

// Index returns the position of the first entry of kind accepted by match, or -1.
func (c *Container) Index(kind SlotKind, match func(Item) bool) int {
	for i, item := range c.List(kind) {
		if match(item) {
			return i
		}
	}
	return -1
}

// Contains reports whether an entry of kind has the given id.
func (c *Container) Contains(kind SlotKind, id int64) bool {
	return c.Index(kind, func(it Item) bool { return it.ID != nil && *it.ID == id }) >= 0
}

// Normalize turns missing lists into empty ones so documents always carry all five keys.
func (c *Container) Normalize() {
	for _, kind := range SlotKinds {
		if c.List(kind) == nil {
			c.SetList(kind, []Item{})
		}
	}
}

// Clone deep-copies every list.
func (c Container) Clone() Container {
	var out Container
	for _, kind := range SlotKinds {
		src := c.List(kind)
		if src == nil {
			continue
		}
		dst := make([]Item, len(src))
		for i, item := range src {
			dst[i] = item.Clone()
		}
		out.SetList(kind, dst)
	}
	return out
}

// Player is the document stored per player, keyed by NombreUsuario.
type Player struct {
	NombreUsuario string    `json:"nombreUsuario" bson:"nombreUsuario" validate:"required"`
	Avatar        string    `json:"avatar" bson:"avatar"`
	Rol           string    `json:"rol" bson:"rol"`
	Creditos      int64     `json:"creditos" bson:"creditos"`
	Exp           int64     `json:"exp" bson:"exp"`
	Inventario    Container `json:"inventario" bson:"inventario"`
	Equipados     Container `json:"equipados" bson:"equipados"`

	ClaimsThisWeek *int   `json:"claimsThisWeek,omitempty" bson:"claimsThisWeek,omitempty"`
	WeekStartISO   string `json:"weekStartISO,omitempty" bson:"weekStartISO,omitempty"`
}

// Container returns the named container, nil for an unknown name.
func (p *Player) Container(name string) *Container {
	switch name {
	case ContainerInventario:
		return &p.Inventario
	case ContainerEquipados:
		return &p.Equipados
	}
	return nil
}

// Normalize fills defaults for a freshly decoded or newly created document.
func (p *Player) Normalize() {
	p.NombreUsuario = strings.TrimSpace(p.NombreUsuario)
	if p.Rol == "" {
		p.Rol = RolJugador
	}
	p.Inventario.Normalize()
	p.Equipados.Normalize()
}

// Clone returns a deep copy safe to mutate independently of p.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Inventario = p.Inventario.Clone()
	out.Equipados = p.Equipados.Clone()
	if p.ClaimsThisWeek != nil {
		claims := *p.ClaimsThisWeek
		out.ClaimsThisWeek = &claims
	}
	return &out
}

// Owns reports whether (kind, id) is present in either container.
func (p *Player) Owns(kind SlotKind, id int64) bool {
	return p.Inventario.Contains(kind, id) || p.Equipados.Contains(kind, id)
}
