// Package engine turns player intents into store statements. It never talks to
// a store: callers load the documents, pass them in, and persist what comes back.
package engine

import (
	"fmt"
	"strings"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"

	"golang.org/x/text/cases"
)

// Move describes an item moving between two lists, possibly on two players.
type Move struct {
	Kind       model.SlotKind
	From       string
	To         string
	Item       model.Item
	Statements []model.Statement
}

// Plan is the outcome of a reward: the statements to write, plus the hero
// snapshot when experience was applied.
type Plan struct {
	Statements   []model.Statement
	Hero         *model.Item
	HeroPath     string
	LevelsGained int
	Won          []model.WonItem
	Skipped      []string
}

// sameName compares item names with full Unicode case folding. A Caser keeps
// state, so one is built per call.
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func byName(name string) func(model.Item) bool {
	return func(it model.Item) bool { return sameName(it.Name, name) }
}

// find searches the given kinds of c, in order, for the first entry named name.
func find(c *model.Container, kinds []model.SlotKind, name string) (model.SlotKind, model.Item, bool) {
	for _, kind := range kinds {
		if idx := c.Index(kind, byName(name)); idx >= 0 {
			return kind, c.List(kind)[idx], true
		}
	}
	return "", model.Item{}, false
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name is required", model.ErrInvalidInput)
	}
	return nil
}

// Equip moves the first inventory entry of kind named itemName into the equipped list.
func Equip(p *model.Player, kind model.SlotKind, itemName string) (*Move, error) {
	return relocate(p, kind, itemName, model.ContainerInventario, model.ContainerEquipados)
}

// Unequip moves the first equipped entry of kind named itemName back to the inventory.
func Unequip(p *model.Player, kind model.SlotKind, itemName string) (*Move, error) {
	return relocate(p, kind, itemName, model.ContainerEquipados, model.ContainerInventario)
}

func relocate(p *model.Player, kind model.SlotKind, itemName, from, to string) (*Move, error) {
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown slot kind %q", model.ErrInvalidInput, kind)
	}
	if err := checkName(itemName); err != nil {
		return nil, err
	}

	_, item, ok := find(p.Container(from), []model.SlotKind{kind}, itemName)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q not in %s of %s", model.ErrItemNotFound, kind, itemName, from, p.NombreUsuario)
	}

	return &Move{
		Kind: kind,
		From: from,
		To:   to,
		Item: item,
		Statements: []model.Statement{
			model.RemoveFromList(p.NombreUsuario, from, kind, item.Match()),
			model.AppendToList(p.NombreUsuario, to, kind, item),
		},
	}, nil
}

// TransferItem moves an item from origin to target's inventory. The origin's
// inventory is searched before its equipped gear, kinds in SlotKinds order.
func TransferItem(origin, target *model.Player, itemName string) (*Move, error) {
	if origin == nil || target == nil {
		return nil, model.ErrPlayerNotFound
	}
	if origin.NombreUsuario == target.NombreUsuario {
		return nil, fmt.Errorf("%w: cannot transfer to the same player", model.ErrInvalidInput)
	}
	if err := checkName(itemName); err != nil {
		return nil, err
	}

	for _, from := range []string{model.ContainerInventario, model.ContainerEquipados} {
		kind, item, ok := find(origin.Container(from), model.SlotKinds, itemName)
		if !ok {
			continue
		}
		if item.ID != nil && target.Owns(kind, *item.ID) {
			return nil, fmt.Errorf("%w: %s already owns %s id %d", model.ErrDuplicateItem, target.NombreUsuario, kind, *item.ID)
		}
		return &Move{
			Kind: kind,
			From: from,
			To:   model.ContainerInventario,
			Item: item,
			Statements: []model.Statement{
				model.RemoveFromList(origin.NombreUsuario, from, kind, item.Match()),
				model.AppendToList(target.NombreUsuario, model.ContainerInventario, kind, item),
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q not owned by %s", model.ErrItemNotFound, itemName, origin.NombreUsuario)
}

// ApplyReward plans a reward for target. origins maps origin player names to
// their documents; missing entries are treated as unknown players.
//
// Credits always produce a statement. Experience is applied to the resolved
// hero when Exp is non-zero and silently skipped when no hero resolves. Won
// items come only from an origin's equipped gear and land in the target's
// inventory; unresolvable pairs are skipped.
func ApplyReward(target *model.Player, reward model.Reward, origins map[string]*model.Player) (*Plan, error) {
	if target == nil {
		return nil, model.ErrPlayerNotFound
	}

	plan := &Plan{}
	name := target.NombreUsuario
	plan.Statements = append(plan.Statements, model.IncrementField(name, model.FieldCreditos, reward.Credits))

	if reward.Exp != 0 {
		if container, hero, ok := resolveHero(target, reward); ok {
			oldLevel := hero.HeroLevel()
			level, exp := ApplyExperience(oldLevel, hero.HeroExperience(), reward.Exp)
			updated := hero.WithProgress(level, exp)

			plan.Statements = append(plan.Statements,
				model.ReplaceListElement(name, container, model.KindHero, hero.Match(), updated))
			plan.Hero = &updated
			plan.HeroPath = model.ListPath(container, model.KindHero)
			plan.LevelsGained = level - oldLevel
		} else {
			plan.Skipped = append(plan.Skipped, "experience: no hero resolved")
		}
	}

	// Working copies, so repeated pairs see the effect of earlier ones.
	recipient := target.Clone()
	working := make(map[string]*model.Player, len(origins))
	for _, w := range reward.WonItems {
		if w.OriginPlayer == name {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("won item %q: origin is the target", w.ItemName))
			continue
		}
		origin, ok := working[w.OriginPlayer]
		if !ok {
			origin = origins[w.OriginPlayer].Clone()
			working[w.OriginPlayer] = origin
		}
		if origin == nil {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("won item %q: player %q not found", w.ItemName, w.OriginPlayer))
			continue
		}

		kind, item, found := find(&origin.Equipados, model.SlotKinds, w.ItemName)
		if !found {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("won item %q: not equipped by %s", w.ItemName, w.OriginPlayer))
			continue
		}
		if item.ID != nil && recipient.Owns(kind, *item.ID) {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("won item %q: %s already owns %s id %d", w.ItemName, name, kind, *item.ID))
			continue
		}

		remove := model.RemoveFromList(origin.NombreUsuario, model.ContainerEquipados, kind, item.Match())
		add := model.AppendToList(name, model.ContainerInventario, kind, item)
		origin.Apply(remove)
		recipient.Apply(add)

		plan.Statements = append(plan.Statements, remove, add)
		plan.Won = append(plan.Won, w)
	}

	if len(plan.Statements) == 0 {
		return nil, model.ErrNoOpReward
	}
	return plan, nil
}

// resolveHero picks the hero that receives experience: explicit id, then
// explicit name (equipped before inventory), then the single-hero fallback.
func resolveHero(p *model.Player, r model.Reward) (string, model.Item, bool) {
	containers := []string{model.ContainerEquipados, model.ContainerInventario}

	if r.HeroID != nil {
		id := *r.HeroID
		for _, c := range containers {
			list := p.Container(c).Hero
			if idx := p.Container(c).Index(model.KindHero, func(it model.Item) bool { return it.ID != nil && *it.ID == id }); idx >= 0 {
				return c, list[idx], true
			}
		}
	}
	if strings.TrimSpace(r.HeroName) != "" {
		for _, c := range containers {
			if idx := p.Container(c).Index(model.KindHero, byName(r.HeroName)); idx >= 0 {
				return c, p.Container(c).Hero[idx], true
			}
		}
	}

	switch {
	case len(p.Equipados.Hero) == 1:
		return model.ContainerEquipados, p.Equipados.Hero[0], true
	case len(p.Equipados.Hero) == 0 && len(p.Inventario.Hero) == 1:
		return model.ContainerInventario, p.Inventario.Hero[0], true
	}
	return "", model.Item{}, false
}
