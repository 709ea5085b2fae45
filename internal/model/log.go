package model

import "time"

// Operation names recorded in the mutation log.
const (
	OperationEquip    = "equip"
	OperationUnequip  = "unequip"
	OperationTransfer = "transfer"
	OperationReward   = "reward"
	OperationCredits  = "credits"
	OperationAddItem  = "add_item"
)

// MutationLog records one engine-driven write against the player store.
type MutationLog struct {
	ID           string      `json:"id" bson:"_id"`
	Operation    string      `json:"operation" bson:"operation"`
	Player       string      `json:"player" bson:"player"`
	Counterparty string      `json:"counterparty,omitempty" bson:"counterparty,omitempty"`
	Kind         string      `json:"kind,omitempty" bson:"kind,omitempty"`
	ItemName     string      `json:"item_name,omitempty" bson:"item_name,omitempty"`
	Statements   []Statement `json:"statements" bson:"statements"`
	Modified     int         `json:"modified" bson:"modified"`
	Success      bool        `json:"success" bson:"success"`
	Error        string      `json:"error,omitempty" bson:"error,omitempty"`
	RequestID    string      `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at" bson:"created_at"`
}

// Involves reports whether the log concerns the named player on either side.
func (l *MutationLog) Involves(player string) bool {
	return l.Player == player || l.Counterparty == player
}
