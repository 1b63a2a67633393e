package dialogue

import "fmt"

// SlotName identifies one of the three fixed booking slots.
type SlotName string

const (
	SlotDate      SlotName = "date"
	SlotTime      SlotName = "time"
	SlotPartySize SlotName = "party_size"
)

// SlotOrder is the fixed collection order for the booking flow.
var SlotOrder = []SlotName{SlotDate, SlotTime, SlotPartySize}

// SlotState is the lifecycle tag of a slot value.
// A slot moves unknown -> ambiguous -> resolved and never regresses to
// unknown without an explicit user correction.
type SlotState string

const (
	SlotUnknown   SlotState = "unknown"
	SlotAmbiguous SlotState = "ambiguous"
	SlotResolved  SlotState = "resolved"
)

// SlotValue is a tagged variant: unknown, an ambiguous candidate set
// awaiting disambiguation, or a single resolved value.
type SlotValue struct {
	State      SlotState `json:"state"`
	Value      string    `json:"value,omitempty"`
	Candidates []string  `json:"candidates,omitempty"`
}

// Unknown returns an unfilled slot value. Unfilled slots are always
// represented explicitly, never absent.
func Unknown() SlotValue {
	return SlotValue{State: SlotUnknown}
}

// Resolved returns a slot value pinned to a single value.
func Resolved(value string) SlotValue {
	return SlotValue{State: SlotResolved, Value: value}
}

// Ambiguous returns a slot value holding a candidate set. A single
// candidate collapses directly to resolved.
func Ambiguous(candidates ...string) SlotValue {
	if len(candidates) == 1 {
		return Resolved(candidates[0])
	}
	cp := make([]string, len(candidates))
	copy(cp, candidates)
	return SlotValue{State: SlotAmbiguous, Candidates: cp}
}

func (v SlotValue) IsResolved() bool  { return v.State == SlotResolved }
func (v SlotValue) IsAmbiguous() bool { return v.State == SlotAmbiguous }
func (v SlotValue) IsUnknown() bool   { return v.State == SlotUnknown }

// Equal reports deep equality, used by tests and the contradiction check.
func (v SlotValue) Equal(other SlotValue) bool {
	if v.State != other.State || v.Value != other.Value {
		return false
	}
	if len(v.Candidates) != len(other.Candidates) {
		return false
	}
	for i := range v.Candidates {
		if v.Candidates[i] != other.Candidates[i] {
			return false
		}
	}
	return true
}

func (v SlotValue) String() string {
	switch v.State {
	case SlotResolved:
		return v.Value
	case SlotAmbiguous:
		return fmt.Sprintf("one of %v", v.Candidates)
	default:
		return "unknown"
	}
}

// Slots holds the fixed booking slot set. Using a struct (not a map)
// guarantees the invariant that the key set never grows or shrinks.
type Slots struct {
	Date      SlotValue `json:"date"`
	Time      SlotValue `json:"time"`
	PartySize SlotValue `json:"party_size"`
}

// NewSlots returns the three slots, all explicitly unknown.
func NewSlots() Slots {
	return Slots{Date: Unknown(), Time: Unknown(), PartySize: Unknown()}
}

// Get returns the value for a named slot.
func (s Slots) Get(name SlotName) SlotValue {
	switch name {
	case SlotDate:
		return s.Date
	case SlotTime:
		return s.Time
	case SlotPartySize:
		return s.PartySize
	}
	return Unknown()
}

// Set replaces the value for a named slot.
func (s *Slots) Set(name SlotName, v SlotValue) {
	switch name {
	case SlotDate:
		s.Date = v
	case SlotTime:
		s.Time = v
	case SlotPartySize:
		s.PartySize = v
	}
}

// AllResolved reports whether every booking slot is resolved.
func (s Slots) AllResolved() bool {
	return s.Date.IsResolved() && s.Time.IsResolved() && s.PartySize.IsResolved()
}

// FirstUnresolved returns the first slot in collection order that is not
// yet resolved, and false when everything is filled.
func (s Slots) FirstUnresolved() (SlotName, bool) {
	for _, name := range SlotOrder {
		if !s.Get(name).IsResolved() {
			return name, true
		}
	}
	return "", false
}
