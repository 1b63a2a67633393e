package dialogue

// DecisionKind classifies what the engine decided this turn. The renderer
// turns a Decision into user-facing prose; the engine never emits prose
// requirements itself.
type DecisionKind string

const (
	// DecisionAskSlot prompts for the next missing booking slot.
	DecisionAskSlot DecisionKind = "ask_slot"
	// DecisionClarify asks the user to pick between ambiguous candidates.
	DecisionClarify DecisionKind = "clarify"
	// DecisionConfirm summarizes all filled slots and asks for a yes/no.
	DecisionConfirm DecisionKind = "confirm"
	// DecisionCompleted closes the booking after an affirmative confirmation.
	DecisionCompleted DecisionKind = "completed"
	// DecisionAnswer answers a factual digression and prompts a resume.
	DecisionAnswer DecisionKind = "answer"
	// DecisionDeflect deflects an off-topic turn (or a knowledge miss) and
	// prompts a resume.
	DecisionDeflect DecisionKind = "deflect"
	// DecisionReprompt re-asks after an unintelligible turn.
	DecisionReprompt DecisionKind = "reprompt"
	// DecisionRejected is the ethical-filter short circuit.
	DecisionRejected DecisionKind = "rejected"
)

// Decision is the structured outcome of one dialogue turn. It is what
// crosses the text-generation boundary.
type Decision struct {
	Kind  DecisionKind `json:"kind"`
	Stage Stage        `json:"stage"`
	Slots Slots        `json:"slots"`

	// Slot and Candidates are set for ask_slot and clarify decisions.
	Slot       SlotName `json:"slot,omitempty"`
	Candidates []string `json:"candidates,omitempty"`

	// Answer carries the knowledge-base answer for answer decisions.
	Answer string `json:"answer,omitempty"`

	// ResumeSlot is the slot to steer the user back to after a digression
	// or a rejection.
	ResumeSlot SlotName `json:"resume_slot,omitempty"`

	// Verdict is set for rejected decisions; Escalate is raised once the
	// session's violation count passes the engine threshold.
	Verdict  VerdictClass `json:"verdict,omitempty"`
	Escalate bool         `json:"escalate,omitempty"`
}
