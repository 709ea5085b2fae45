package model

import (
	"fmt"
	"reflect"
	"strings"
)

// StatementOp is the kind of change a statement applies to one player document.
type StatementOp string

const (
	// OpRemoveFromList removes every element of a list that matches.
	OpRemoveFromList StatementOp = "remove"
	// OpAppendToList appends an element to a list.
	OpAppendToList StatementOp = "append"
	// OpIncrementField adds a delta to a numeric scalar.
	OpIncrementField StatementOp = "increment"
	// OpReplaceListElement swaps the first matching element for a new value.
	OpReplaceListElement StatementOp = "replace"
)

// Statement is one independent write against a single player document.
// Path is either a list path ("inventario.weapons") or a scalar field ("creditos").
type Statement struct {
	Op        StatementOp `json:"op" bson:"op"`
	PlayerKey string      `json:"player" bson:"player"`
	Path      string      `json:"path" bson:"path"`
	Match     *Match      `json:"match,omitempty" bson:"match,omitempty"`
	Item      *Item       `json:"item,omitempty" bson:"item,omitempty"`
	Delta     int64       `json:"delta,omitempty" bson:"delta,omitempty"`
}

func RemoveFromList(player, container string, kind SlotKind, match Match) Statement {
	return Statement{Op: OpRemoveFromList, PlayerKey: player, Path: ListPath(container, kind), Match: &match}
}

func AppendToList(player, container string, kind SlotKind, item Item) Statement {
	it := item.Clone()
	return Statement{Op: OpAppendToList, PlayerKey: player, Path: ListPath(container, kind), Item: &it}
}

func IncrementField(player, field string, delta int64) Statement {
	return Statement{Op: OpIncrementField, PlayerKey: player, Path: field, Delta: delta}
}

func ReplaceListElement(player, container string, kind SlotKind, match Match, item Item) Statement {
	it := item.Clone()
	return Statement{Op: OpReplaceListElement, PlayerKey: player, Path: ListPath(container, kind), Match: &match, Item: &it}
}

// ListTarget splits a list path into its container and kind.
func (s Statement) ListTarget() (string, SlotKind, bool) {
	container, kind, ok := strings.Cut(s.Path, ".")
	if !ok || (container != ContainerInventario && container != ContainerEquipados) {
		return "", "", false
	}
	k := SlotKind(kind)
	if !k.Valid() {
		return "", "", false
	}
	return container, k, true
}

// Validate checks that the statement is well formed for its op.
func (s Statement) Validate() error {
	if s.PlayerKey == "" {
		return fmt.Errorf("%w: statement without player key", ErrInvalidInput)
	}
	switch s.Op {
	case OpIncrementField:
		if s.Path != FieldCreditos && s.Path != FieldExp {
			return fmt.Errorf("%w: cannot increment %q", ErrInvalidInput, s.Path)
		}
		return nil
	case OpRemoveFromList, OpAppendToList, OpReplaceListElement:
	default:
		return fmt.Errorf("%w: unknown statement op %q", ErrInvalidInput, s.Op)
	}
	if _, _, ok := s.ListTarget(); !ok {
		return fmt.Errorf("%w: bad list path %q", ErrInvalidInput, s.Path)
	}
	if s.Op != OpAppendToList && s.Match == nil {
		return fmt.Errorf("%w: %s statement without match", ErrInvalidInput, s.Op)
	}
	if s.Op != OpRemoveFromList && s.Item == nil {
		return fmt.Errorf("%w: %s statement without item", ErrInvalidInput, s.Op)
	}
	return nil
}

func (s Statement) String() string {
	switch s.Op {
	case OpIncrementField:
		return fmt.Sprintf("%s %s.%s %+d", s.Op, s.PlayerKey, s.Path, s.Delta)
	case OpAppendToList:
		return fmt.Sprintf("%s %s.%s %q", s.Op, s.PlayerKey, s.Path, s.Item.Name)
	default:
		return fmt.Sprintf("%s %s.%s [%s]", s.Op, s.PlayerKey, s.Path, s.Match)
	}
}

// Apply executes the statement against p in memory with document-store semantics.
// matched reports whether the statement selected anything on this document,
// modified whether the document changed. The statement's PlayerKey is not checked.
func (p *Player) Apply(s Statement) (matched, modified bool) {
	if s.Op == OpIncrementField {
		switch s.Path {
		case FieldCreditos:
			p.Creditos += s.Delta
		case FieldExp:
			p.Exp += s.Delta
		default:
			return false, false
		}
		return true, s.Delta != 0
	}

	container, kind, ok := s.ListTarget()
	if !ok {
		return false, false
	}
	c := p.Container(container)
	list := c.List(kind)

	switch s.Op {
	case OpRemoveFromList:
		kept := make([]Item, 0, len(list))
		for _, item := range list {
			if !item.Matches(*s.Match) {
				kept = append(kept, item)
			}
		}
		c.SetList(kind, kept)
		return true, len(kept) != len(list)
	case OpAppendToList:
		c.SetList(kind, append(list, s.Item.Clone()))
		return true, true
	case OpReplaceListElement:
		for i, item := range list {
			if item.Matches(*s.Match) {
				if reflect.DeepEqual(item, *s.Item) {
					return true, false
				}
				list[i] = s.Item.Clone()
				return true, true
			}
		}
		return false, false
	}
	return false, false
}

// BatchResult counts what an ordered batch write did. Modified is the number
// of statements that changed a document; Statements is how many were sent.
type BatchResult struct {
	Statements int `json:"statements"`
	Matched    int `json:"matched"`
	Modified   int `json:"modified"`
}

// Applied reports whether at least one statement changed a document.
func (r *BatchResult) Applied() bool {
	return r != nil && r.Modified > 0
}
