package domain

import (
	"testing"
)

func instance(id string, hp int) CardInstance {
	return CardInstance{
		CardID:    id,
		Card:      CardStats{ID: "cat-" + id, Name: "mon-" + id, HP: hp, Attacks: []AttackStats{{Name: "Tackle", Damage: 20}}},
		CurrentHP: hp,
	}
}

func TestApplyDamage(t *testing.T) {
	tests := []struct {
		name       string
		hp         int
		damage     int
		wantHP     int
		wantStatus string
	}{
		{name: "PartialDamage", hp: 60, damage: 20, wantHP: 40, wantStatus: ""},
		{name: "OverkillFloorsAtZero", hp: 15, damage: 20, wantHP: 0, wantStatus: CardStatusKO},
		{name: "ExactKO", hp: 20, damage: 20, wantHP: 0, wantStatus: CardStatusKO},
		{name: "ZeroDamageNoChange", hp: 30, damage: 0, wantHP: 30, wantStatus: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := instance("c1", tt.hp)
			ApplyDamage(&inst, tt.damage)
			if inst.CurrentHP != tt.wantHP {
				t.Fatalf("CurrentHP = %d, want %d", inst.CurrentHP, tt.wantHP)
			}
			if inst.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", inst.Status, tt.wantStatus)
			}
		})
	}
}

func TestApplyDamageIsMonotonic(t *testing.T) {
	inst := instance("c1", 50)
	prev := inst.CurrentHP
	for _, d := range []int{10, 0, 25, 40} {
		ApplyDamage(&inst, d)
		if inst.CurrentHP > prev {
			t.Fatalf("HP increased from %d to %d", prev, inst.CurrentHP)
		}
		if inst.CurrentHP < 0 {
			t.Fatalf("HP went negative: %d", inst.CurrentHP)
		}
		prev = inst.CurrentHP
	}
}

func TestFirstAttackDamage(t *testing.T) {
	stats := CardStats{Attacks: []AttackStats{{Name: "Ember", Damage: 30}, {Name: "Flamethrower", Damage: 90}}}
	if got := FirstAttackDamage(stats); got != 30 {
		t.Fatalf("damage = %d, want 30 (first attack only)", got)
	}
	if got := FirstAttackDamage(CardStats{}); got != 0 {
		t.Fatalf("damage = %d, want 0 for card without attacks", got)
	}
}

func TestKnockedOut(t *testing.T) {
	var nilInst *CardInstance
	if !nilInst.KnockedOut() {
		t.Fatal("nil instance should count as knocked out")
	}

	inst := instance("c1", 10)
	if inst.KnockedOut() {
		t.Fatal("live instance reported as KO")
	}
	ApplyDamage(&inst, 10)
	if !inst.KnockedOut() {
		t.Fatal("zero-HP instance should be KO")
	}
}

func TestRemoveCardByID(t *testing.T) {
	hand := []CardInstance{instance("a", 10), instance("b", 20), instance("c", 30)}

	out, removed, ok := RemoveCardByID(hand, "b")
	if !ok {
		t.Fatal("expected card b to be found")
	}
	if removed.CardID != "b" {
		t.Fatalf("removed %q, want b", removed.CardID)
	}
	if len(out) != 2 || out[0].CardID != "a" || out[1].CardID != "c" {
		t.Fatalf("unexpected remainder: %+v", out)
	}
	if len(hand) != 3 {
		t.Fatal("input slice mutated")
	}

	if _, _, ok := RemoveCardByID(hand, "zzz"); ok {
		t.Fatal("found a card that does not exist")
	}
}

func TestHasViableBattler(t *testing.T) {
	p := &Player{UserID: "u1"}
	if HasViableBattler(p) {
		t.Fatal("empty player should have no battler")
	}

	live := instance("a", 10)
	p.Hand = []CardInstance{live}
	if !HasViableBattler(p) {
		t.Fatal("live hand card should count")
	}

	ApplyDamage(&p.Hand[0], 10)
	if HasViableBattler(p) {
		t.Fatal("KO'd hand card should not count")
	}

	active := instance("b", 5)
	p.Active = &active
	if !HasViableBattler(p) {
		t.Fatal("live active should count")
	}
	ApplyDamage(p.Active, 99)
	if HasViableBattler(p) {
		t.Fatal("KO'd active should not count")
	}
}

func TestAddPlayerCapsAtTwo(t *testing.T) {
	m := NewMatchState()
	if !m.AddPlayer(&Player{UserID: "u1"}) {
		t.Fatal("first join rejected")
	}
	if !m.AddPlayer(&Player{UserID: "u2"}) {
		t.Fatal("second join rejected")
	}
	if m.AddPlayer(&Player{UserID: "u3"}) {
		t.Fatal("third join must be rejected")
	}
	if m.AddPlayer(&Player{UserID: "u1"}) {
		t.Fatal("duplicate join must be rejected")
	}
	if len(m.Players) != 2 || len(m.Order) != 2 {
		t.Fatalf("players = %d, order = %d, want 2/2", len(m.Players), len(m.Order))
	}
}

func TestOpponent(t *testing.T) {
	m := NewMatchState()
	m.AddPlayer(&Player{UserID: "u1"})
	m.AddPlayer(&Player{UserID: "u2"})

	if got := m.Opponent("u1"); got != "u2" {
		t.Fatalf("opponent of u1 = %q, want u2", got)
	}
	if got := m.Opponent("u2"); got != "u1" {
		t.Fatalf("opponent of u2 = %q, want u1", got)
	}

	m.RemovePlayer("u2")
	if got := m.Opponent("u1"); got != "" {
		t.Fatalf("opponent after leave = %q, want empty", got)
	}
}

func TestRecomputePhase(t *testing.T) {
	m := NewMatchState()
	m.AddPlayer(&Player{UserID: "u1"})
	m.AddPlayer(&Player{UserID: "u2"})

	m.RecomputePhase()
	if m.Phase != PhaseSelect {
		t.Fatalf("phase = %s, want select with no actives", m.Phase)
	}

	a := instance("a", 30)
	m.Players["u1"].Active = &a
	m.RecomputePhase()
	if m.Phase != PhaseSelect {
		t.Fatalf("phase = %s, want select with one active", m.Phase)
	}

	b := instance("b", 30)
	m.Players["u2"].Active = &b
	m.RecomputePhase()
	if m.Phase != PhaseAttack {
		t.Fatalf("phase = %s, want attack with both actives", m.Phase)
	}
}

func TestComputeLabel(t *testing.T) {
	m := NewMatchState()
	label := ComputeLabel(m, 1234)
	if !label.Open || label.Game != GameName || label.Status != string(StatusWaiting) || label.CreatedAt != 1234 {
		t.Fatalf("unexpected label: %+v", label)
	}

	m.AddPlayer(&Player{UserID: "u1"})
	m.AddPlayer(&Player{UserID: "u2"})
	m.Status = StatusActive
	label = ComputeLabel(m, 1234)
	if label.Open {
		t.Fatal("active match must not advertise open")
	}
}
