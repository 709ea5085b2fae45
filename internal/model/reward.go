package model

// WonItem names an item the target wins from another player's equipped gear.
type WonItem struct {
	OriginPlayer string `json:"originPlayer" validate:"required"`
	ItemName     string `json:"itemName" validate:"required"`
}

// Reward is the payload granted to one player at the end of a match.
// Credits and Exp may be negative.
type Reward struct {
	Target   string
	Credits  int64
	Exp      int64
	HeroID   *int64
	HeroName string
	WonItems []WonItem
}

// Origins returns the distinct origin player names, in first-seen order,
// excluding the reward target.
func (r Reward) Origins() []string {
	seen := make(map[string]struct{}, len(r.WonItems))
	out := make([]string, 0, len(r.WonItems))
	for _, w := range r.WonItems {
		if w.OriginPlayer == "" || w.OriginPlayer == r.Target {
			continue
		}
		if _, ok := seen[w.OriginPlayer]; ok {
			continue
		}
		seen[w.OriginPlayer] = struct{}{}
		out = append(out, w.OriginPlayer)
	}
	return out
}
