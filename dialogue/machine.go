package dialogue

import (
	"context"
	"fmt"
)

// KnowledgeBase answers factual digressions. A miss is reported via ok,
// never as an error; the engine converts it to a deflection.
type KnowledgeBase interface {
	Lookup(question string) (answer string, ok bool)
}

const defaultMaxViolations = 3

// Engine is the dialogue state machine. Given a session record and one
// new utterance it runs filter -> classify -> route -> mutate slots ->
// decide next stage, producing a structured Decision.
//
// Engine itself is stateless and safe for concurrent use; all mutable
// state lives in the Record, which callers must serialize per session.
type Engine struct {
	filter        Filter
	nlu           Extractor
	kb            KnowledgeBase
	maxViolations int
}

// NewEngine wires the engine from its three capability interfaces.
// maxViolations sets the escalation threshold; values <= 0 fall back to
// the default of 3.
func NewEngine(filter Filter, nlu Extractor, kb KnowledgeBase, maxViolations int) *Engine {
	if maxViolations <= 0 {
		maxViolations = defaultMaxViolations
	}
	return &Engine{filter: filter, nlu: nlu, kb: kb, maxViolations: maxViolations}
}

// Step processes exactly one turn. On error the record must be discarded
// by the caller (the session store commits only successful turns), so a
// failed turn never partially applies slot mutations.
func (e *Engine) Step(ctx context.Context, rec *Record, utterance string) (Decision, error) {
	verdict := e.filter.Evaluate(utterance, rec)
	if !verdict.IsClean() {
		// Rejection short-circuits the turn: no stage or slot mutation,
		// only the violation counter moves.
		rec.Violations++
		dec := Decision{
			Kind:       DecisionRejected,
			Stage:      rec.Stage,
			Slots:      rec.Slots,
			Verdict:    verdict.Class,
			Escalate:   rec.Violations >= e.maxViolations,
			ResumeSlot: requestedSlot(rec.Stage),
		}
		rec.appendHistory(utterance, dec.Kind)
		return dec, nil
	}

	ext, err := e.nlu.Extract(ctx, utterance, rec.Stage)
	if err != nil {
		return Decision{}, fmt.Errorf("slot extraction: %w", err)
	}
	// Malformed extractor output degrades to unintelligible, never a crash.
	if !validIntent(ext.Intent) {
		ext = Extraction{Intent: IntentUnintelligible}
	}

	var dec Decision
	switch ext.Intent {
	case IntentFactualQuestion:
		dec = e.answerDigression(rec, utterance)
	case IntentOffTopic:
		dec = e.deflect(rec)
	case IntentConfirmation:
		dec = e.confirm(rec, ext)
	case IntentBookingProgress:
		dec = e.advanceBooking(rec, ext)
	default:
		dec = Decision{
			Kind:       DecisionReprompt,
			Stage:      rec.Stage,
			Slots:      rec.Slots,
			ResumeSlot: requestedSlot(rec.Stage),
		}
	}

	rec.appendHistory(utterance, dec.Kind)
	return dec, nil
}

// answerDigression handles a factual question without derailing the
// booking: the current stage is saved on the interruption stack (depth
// capped; repeat digressions answer without re-pushing) and the decision
// carries both the answer and a resume reference.
func (e *Engine) answerDigression(rec *Record, utterance string) Decision {
	rec.pushPending()

	saved := rec.Stage
	if len(rec.PendingTopics) > 0 {
		saved = rec.PendingTopics[len(rec.PendingTopics)-1].Stage
	}

	dec := Decision{
		Stage:      rec.Stage,
		Slots:      rec.Slots,
		ResumeSlot: requestedSlot(saved),
	}
	if answer, ok := e.kb.Lookup(utterance); ok {
		dec.Kind = DecisionAnswer
		dec.Answer = answer
	} else {
		dec.Kind = DecisionDeflect
	}
	return dec
}

// deflect handles smalltalk: acknowledge, steer back, mutate nothing.
func (e *Engine) deflect(rec *Record) Decision {
	return Decision{
		Kind:       DecisionDeflect,
		Stage:      rec.Stage,
		Slots:      rec.Slots,
		ResumeSlot: requestedSlot(rec.Stage),
	}
}

// confirm handles the AWAITING_CONFIRMATION stage. Only an affirmative
// reaches COMPLETED; anything else re-prompts. Corrections arrive as
// booking progress, not here.
func (e *Engine) confirm(rec *Record, ext Extraction) Decision {
	switch rec.Stage {
	case StageAwaitingConfirmation:
		rec.popPending()
		if ext.Affirmative {
			rec.Stage = StageCompleted
			return Decision{Kind: DecisionCompleted, Stage: rec.Stage, Slots: rec.Slots}
		}
		return Decision{Kind: DecisionConfirm, Stage: rec.Stage, Slots: rec.Slots}
	case StageCompleted:
		return Decision{Kind: DecisionCompleted, Stage: rec.Stage, Slots: rec.Slots}
	default:
		// A bare "yes" while collecting is an acknowledgement, not data.
		return Decision{
			Kind:       DecisionAskSlot,
			Stage:      rec.Stage,
			Slots:      rec.Slots,
			Slot:       requestedSlot(rec.Stage),
			ResumeSlot: requestedSlot(rec.Stage),
		}
	}
}

// advanceBooking merges slot updates per the unknown -> ambiguous ->
// resolved lifecycle, resumes any interrupted stage, and advances the
// flow in the fixed date -> time -> party size -> confirmation order.
func (e *Engine) advanceBooking(rec *Record, ext Extraction) Decision {
	if rec.Stage == StageCompleted {
		return Decision{Kind: DecisionCompleted, Stage: rec.Stage, Slots: rec.Slots}
	}

	// Back on topic: pop the interruption stack and resume the saved stage.
	if top, ok := rec.popPending(); ok {
		rec.Stage = top.Stage
	}

	for _, name := range SlotOrder {
		cands := ext.candidates(name)
		if len(cands) == 0 {
			continue
		}
		cur := rec.Slots.Get(name)
		if cur.IsResolved() && !ext.Corrected[name] {
			// A resolved slot never regresses without an explicit
			// correction naming it. The contradiction gate has already
			// passed, so this is a harmless restatement.
			continue
		}
		rec.Slots.Set(name, Ambiguous(cands...))
	}

	if rec.Slots.AllResolved() {
		rec.Stage = StageAwaitingConfirmation
		return Decision{Kind: DecisionConfirm, Stage: rec.Stage, Slots: rec.Slots}
	}

	next, _ := rec.Slots.FirstUnresolved()
	rec.Stage = stageForSlot(next)

	if v := rec.Slots.Get(next); v.IsAmbiguous() {
		return Decision{
			Kind:       DecisionClarify,
			Stage:      rec.Stage,
			Slots:      rec.Slots,
			Slot:       next,
			Candidates: append([]string(nil), v.Candidates...),
		}
	}
	return Decision{Kind: DecisionAskSlot, Stage: rec.Stage, Slots: rec.Slots, Slot: next}
}

// requestedSlot returns the slot a collection stage is asking for, or the
// date slot as a safe default for non-collection stages.
func requestedSlot(stage Stage) SlotName {
	if name, ok := slotForStage(stage); ok {
		return name
	}
	return SlotDate
}
