package dialogue

import "testing"

func TestNewSlotsAllUnknown(t *testing.T) {
	s := NewSlots()
	for _, name := range SlotOrder {
		if !s.Get(name).IsUnknown() {
			t.Errorf("slot %s: expected unknown, got %v", name, s.Get(name))
		}
	}
}

func TestAmbiguousCollapsesToResolved(t *testing.T) {
	v := Ambiguous("Sunday")
	if !v.IsResolved() || v.Value != "Sunday" {
		t.Fatalf("single candidate should resolve, got %+v", v)
	}

	v = Ambiguous("Saturday", "Sunday")
	if !v.IsAmbiguous() || len(v.Candidates) != 2 {
		t.Fatalf("two candidates should stay ambiguous, got %+v", v)
	}
}

func TestFirstUnresolvedFollowsSlotOrder(t *testing.T) {
	s := NewSlots()

	name, ok := s.FirstUnresolved()
	if !ok || name != SlotDate {
		t.Fatalf("expected date first, got %s", name)
	}

	s.Set(SlotDate, Resolved("Sunday"))
	name, _ = s.FirstUnresolved()
	if name != SlotTime {
		t.Fatalf("expected time after date, got %s", name)
	}

	s.Set(SlotTime, Resolved("4pm"))
	s.Set(SlotPartySize, Resolved("20"))
	if _, ok := s.FirstUnresolved(); ok {
		t.Fatal("expected no unresolved slot")
	}
	if !s.AllResolved() {
		t.Fatal("expected AllResolved")
	}
}

func TestSlotValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b SlotValue
		want bool
	}{
		{"both unknown", Unknown(), Unknown(), true},
		{"same resolved", Resolved("Sunday"), Resolved("Sunday"), true},
		{"different resolved", Resolved("Sunday"), Resolved("Monday"), false},
		{"same candidates", Ambiguous("a", "b"), Ambiguous("a", "b"), true},
		{"different candidates", Ambiguous("a", "b"), Ambiguous("a", "c"), false},
		{"state mismatch", Unknown(), Resolved("x"), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}
