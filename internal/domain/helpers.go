package domain

// GameName is the label value identifying this game's matches.
const GameName = "pokebattle"

// LabelPayload is the JSON label advertised for quick-match queries.
type LabelPayload struct {
	Open      bool   `json:"open"`
	Game      string `json:"game"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// ComputeLabel derives the advertised label from match state. CreatedAt is
// carried so the matchmaker can pick the oldest waiting match first.
func ComputeLabel(m *MatchState, createdAt int64) LabelPayload {
	open := m.Status == StatusWaiting && len(m.Players) < 2
	return LabelPayload{
		Open:      open,
		Game:      GameName,
		Status:    string(m.Status),
		CreatedAt: createdAt,
	}
}
