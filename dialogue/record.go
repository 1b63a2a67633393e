package dialogue

import "time"

// Stage is the processing stage of a booking session.
type Stage string

const (
	StageCollectingDate       Stage = "COLLECTING_DATE"
	StageCollectingTime       Stage = "COLLECTING_TIME"
	StageCollectingPartySize  Stage = "COLLECTING_PARTY_SIZE"
	StageAwaitingConfirmation Stage = "AWAITING_CONFIRMATION"
	StageCompleted            Stage = "COMPLETED"
)

// slotForStage maps a collection stage to the slot it is requesting.
func slotForStage(stage Stage) (SlotName, bool) {
	switch stage {
	case StageCollectingDate:
		return SlotDate, true
	case StageCollectingTime:
		return SlotTime, true
	case StageCollectingPartySize:
		return SlotPartySize, true
	}
	return "", false
}

// stageForSlot is the inverse mapping, used when a correction routes the
// dialogue back to a collection stage.
func stageForSlot(name SlotName) Stage {
	switch name {
	case SlotTime:
		return StageCollectingTime
	case SlotPartySize:
		return StageCollectingPartySize
	default:
		return StageCollectingDate
	}
}

// maxPendingTopics caps the digression stack. Deeper digressions are
// answered without growing the stack.
const maxPendingTopics = 1

// PendingTopic is a saved snapshot of where the booking flow was when the
// user digressed. Popped when the conversation returns on topic.
type PendingTopic struct {
	Stage Stage `json:"stage"`
}

// TurnEntry records one processed (utterance, decision) pair. Used by the
// contradiction check and for debugging.
type TurnEntry struct {
	Utterance string       `json:"utterance"`
	Kind      DecisionKind `json:"kind"`
	At        time.Time    `json:"at"`
}

// Record is the full per-session dialogue state. One exists per session
// identifier; it is mutated exclusively by the Engine.
type Record struct {
	Stage         Stage          `json:"stage"`
	Slots         Slots          `json:"slots"`
	PendingTopics []PendingTopic `json:"pending_topics"`
	History       []TurnEntry    `json:"history"`
	Violations    int            `json:"violations"`
}

// NewRecord returns a fresh record at the initial stage with all slots
// explicitly unknown.
func NewRecord() *Record {
	return &Record{
		Stage:         StageCollectingDate,
		Slots:         NewSlots(),
		PendingTopics: []PendingTopic{},
		History:       []TurnEntry{},
	}
}

// Clone returns a deep copy. The session store works on clones so that a
// failed turn never partially applies mutations.
func (r *Record) Clone() *Record {
	cp := *r
	cp.PendingTopics = make([]PendingTopic, len(r.PendingTopics))
	copy(cp.PendingTopics, r.PendingTopics)
	cp.History = make([]TurnEntry, len(r.History))
	copy(cp.History, r.History)
	if r.Slots.Date.Candidates != nil {
		cp.Slots.Date.Candidates = append([]string(nil), r.Slots.Date.Candidates...)
	}
	if r.Slots.Time.Candidates != nil {
		cp.Slots.Time.Candidates = append([]string(nil), r.Slots.Time.Candidates...)
	}
	if r.Slots.PartySize.Candidates != nil {
		cp.Slots.PartySize.Candidates = append([]string(nil), r.Slots.PartySize.Candidates...)
	}
	return &cp
}

// pushPending saves the current stage before a digression. Returns false
// when the stack is already at capacity.
func (r *Record) pushPending() bool {
	if len(r.PendingTopics) >= maxPendingTopics {
		return false
	}
	r.PendingTopics = append(r.PendingTopics, PendingTopic{Stage: r.Stage})
	return true
}

// popPending resumes the saved stage, if any.
func (r *Record) popPending() (PendingTopic, bool) {
	if len(r.PendingTopics) == 0 {
		return PendingTopic{}, false
	}
	top := r.PendingTopics[len(r.PendingTopics)-1]
	r.PendingTopics = r.PendingTopics[:len(r.PendingTopics)-1]
	return top, true
}

func (r *Record) appendHistory(utterance string, kind DecisionKind) {
	r.History = append(r.History, TurnEntry{
		Utterance: utterance,
		Kind:      kind,
		At:        time.Now().UTC(),
	})
}
