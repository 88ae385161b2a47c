package domain

// KnockedOut reports whether the instance is inert.
func (c *CardInstance) KnockedOut() bool {
	return c == nil || c.Status == CardStatusKO || c.CurrentHP <= 0
}

// FirstAttackDamage returns the damage value of a card's first declared
// attack. Cards without attacks deal no damage.
func FirstAttackDamage(stats CardStats) int {
	if len(stats.Attacks) == 0 {
		return 0
	}
	return stats.Attacks[0].Damage
}

// ApplyDamage subtracts damage from the instance, flooring HP at zero and
// marking the instance KO when it reaches zero.
func ApplyDamage(inst *CardInstance, damage int) {
	if inst == nil || damage <= 0 {
		return
	}
	inst.CurrentHP -= damage
	if inst.CurrentHP <= 0 {
		inst.CurrentHP = 0
		inst.Status = CardStatusKO
	}
}

// HasViableBattler reports whether the player still has any card that could
// fight: a live active, or a live card left in hand.
func HasViableBattler(p *Player) bool {
	if p == nil {
		return false
	}
	if !p.Active.KnockedOut() {
		return true
	}
	for i := range p.Hand {
		if !p.Hand[i].KnockedOut() {
			return true
		}
	}
	return false
}

// RemoveCardByID removes the first card with the given id from the slice.
// Returns the shrunk slice, the removed instance and whether it was found.
func RemoveCardByID(cards []CardInstance, cardID string) ([]CardInstance, CardInstance, bool) {
	for i := range cards {
		if cards[i].CardID == cardID {
			removed := cards[i]
			out := append(append([]CardInstance{}, cards[:i]...), cards[i+1:]...)
			return out, removed, true
		}
	}
	return cards, CardInstance{}, false
}

// Opponent returns the user id of the other player, or "" if there is none.
func (m *MatchState) Opponent(userID string) string {
	for _, uid := range m.Order {
		if uid != userID {
			return uid
		}
	}
	return ""
}

// AddPlayer registers a player in join order. Returns false if the match is
// full or the user is already present.
func (m *MatchState) AddPlayer(p *Player) bool {
	if len(m.Players) >= 2 {
		return false
	}
	if _, ok := m.Players[p.UserID]; ok {
		return false
	}
	m.Players[p.UserID] = p
	m.Order = append(m.Order, p.UserID)
	return true
}

// RemovePlayer deletes a player and their seat in the join order.
func (m *MatchState) RemovePlayer(userID string) {
	delete(m.Players, userID)
	for i, uid := range m.Order {
		if uid == userID {
			m.Order = append(m.Order[:i], m.Order[i+1:]...)
			break
		}
	}
}

// ActiveCards returns the current active card per user id. Players without
// an active card have no entry.
func (m *MatchState) ActiveCards() map[string]CardInstance {
	out := make(map[string]CardInstance, len(m.Players))
	for uid, p := range m.Players {
		if p.Active != nil {
			out[uid] = *p.Active
		}
	}
	return out
}

// BothActivesChosen reports whether every player has an active card set.
func (m *MatchState) BothActivesChosen() bool {
	if len(m.Players) < 2 {
		return false
	}
	for _, p := range m.Players {
		if p.Active == nil {
			return false
		}
	}
	return true
}

// RecomputePhase derives the phase from the active-card slots. There is no
// server-driven reverse transition mid-turn; this runs on promotion and on
// turn change only.
func (m *MatchState) RecomputePhase() {
	if m.BothActivesChosen() {
		m.Phase = PhaseAttack
	} else {
		m.Phase = PhaseSelect
	}
}
