package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Item is one entry of an equipment list. Only the identity fields (and the hero
// progress fields) are typed; every other catalog field travels untouched in Extra.
type Item struct {
	ID   *int64 `bson:"id,omitempty"`
	Name string `bson:"name"`

	// Hero progress. Nil for the other kinds.
	Level      *int   `bson:"level,omitempty"`
	Experience *int64 `bson:"experience,omitempty"`

	Extra map[string]any `bson:",inline"`
}

// Match selects a list element: by id when the item carries one, else by name.
type Match struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (m Match) String() string {
	if m.ID != nil {
		return fmt.Sprintf("id=%d", *m.ID)
	}
	return fmt.Sprintf("name=%q", m.Name)
}

// Match returns the selector the store uses to find this exact entry.
func (i Item) Match() Match {
	if i.ID != nil {
		id := *i.ID
		return Match{ID: &id}
	}
	return Match{Name: i.Name}
}

// Matches reports whether the item is selected by m.
func (i Item) Matches(m Match) bool {
	if m.ID != nil {
		return i.ID != nil && *i.ID == *m.ID
	}
	return i.Name == m.Name
}

// HeroLevel returns the stored level, treating a missing or invalid value as level 1.
func (i Item) HeroLevel() int {
	if i.Level == nil || *i.Level < 1 {
		return 1
	}
	return *i.Level
}

// HeroExperience returns the progress toward the next level, never negative.
func (i Item) HeroExperience() int64 {
	if i.Experience == nil || *i.Experience < 0 {
		return 0
	}
	return *i.Experience
}

// WithProgress returns a copy of the item carrying the given level and experience.
func (i Item) WithProgress(level int, experience int64) Item {
	out := i.Clone()
	out.Level = &level
	out.Experience = &experience
	return out
}

// Clone copies the typed fields and the top level of Extra. Nested payload values
// are shared; nothing in this module mutates them.
func (i Item) Clone() Item {
	out := Item{Name: i.Name}
	if i.ID != nil {
		id := *i.ID
		out.ID = &id
	}
	if i.Level != nil {
		lvl := *i.Level
		out.Level = &lvl
	}
	if i.Experience != nil {
		exp := *i.Experience
		out.Experience = &exp
	}
	if i.Extra != nil {
		out.Extra = maps.Clone(i.Extra)
	}
	return out
}

// MarshalJSON writes the item as a flat object: the payload plus the typed fields.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+4)
	for k, v := range i.Extra {
		out[k] = v
	}
	if i.ID != nil {
		out["id"] = *i.ID
	}
	out["name"] = i.Name
	if i.Level != nil {
		out["level"] = *i.Level
	}
	if i.Experience != nil {
		out["experience"] = *i.Experience
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat object into typed fields and payload.
func (i *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*i = Item{}
	for key, value := range raw {
		switch key {
		case "id":
			if value == nil {
				continue
			}
			id, err := jsonInt(value)
			if err != nil {
				return fmt.Errorf("%w: item id: %v", ErrInvalidInput, err)
			}
			i.ID = &id
		case "name":
			name, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: item name must be a string", ErrInvalidInput)
			}
			i.Name = name
		case "level":
			if value == nil {
				continue
			}
			lvl, err := jsonInt(value)
			if err != nil {
				return fmt.Errorf("%w: hero level: %v", ErrInvalidInput, err)
			}
			level := int(lvl)
			i.Level = &level
		case "experience":
			if value == nil {
				continue
			}
			exp, err := jsonInt(value)
			if err != nil {
				return fmt.Errorf("%w: hero experience: %v", ErrInvalidInput, err)
			}
			i.Experience = &exp
		default:
			if i.Extra == nil {
				i.Extra = make(map[string]any)
			}
			i.Extra[key] = normalizeJSON(value)
		}
	}
	return nil
}

func jsonInt(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("expected an integer, got %s", n)
	}
	return int64(f), nil
}

// normalizeJSON turns json.Number into int64 or float64 so payloads encode as
// numbers in every store, not as strings.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeJSON(inner)
		}
		return t
	case []any:
		for idx, inner := range t {
			t[idx] = normalizeJSON(inner)
		}
		return t
	default:
		return v
	}
}
