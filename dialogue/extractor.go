package dialogue

import "context"

// Intent is the coarse classification of one utterance.
type Intent string

const (
	IntentBookingProgress Intent = "booking_progress"
	IntentFactualQuestion Intent = "factual_question"
	IntentConfirmation    Intent = "confirmation"
	IntentOffTopic        Intent = "off_topic_smalltalk"
	IntentUnintelligible  Intent = "unintelligible"
)

func validIntent(i Intent) bool {
	switch i {
	case IntentBookingProgress, IntentFactualQuestion, IntentConfirmation,
		IntentOffTopic, IntentUnintelligible:
		return true
	}
	return false
}

// Extraction is the extractor's structured output: an intent plus zero or
// more candidate values per slot. More than one candidate for a slot means
// the value is ambiguous and needs a disambiguating follow-up.
type Extraction struct {
	Intent     Intent
	Dates      []string
	Times      []string
	PartySizes []string

	// Corrected marks slots the user explicitly corrected; only corrected
	// slots may overwrite an already resolved value.
	Corrected map[SlotName]bool

	// Confirmation polarity, meaningful when Intent is confirmation.
	Affirmative bool
	Negative    bool
}

func (e Extraction) candidates(name SlotName) []string {
	switch name {
	case SlotDate:
		return e.Dates
	case SlotTime:
		return e.Times
	case SlotPartySize:
		return e.PartySizes
	}
	return nil
}

func (e Extraction) hasUpdates() bool {
	return len(e.Dates) > 0 || len(e.Times) > 0 || len(e.PartySizes) > 0
}

// Extractor parses an utterance against the current stage. The stage is
// context only: numeric-only replies bind to the slot being requested.
// Implementations are swappable; the state machine depends only on this
// contract.
type Extractor interface {
	Extract(ctx context.Context, utterance string, stage Stage) (Extraction, error)
}

// RuleExtractor is the default extractor: deterministic lexical rules, no
// model calls. It understands relative and vague date/time expressions by
// emitting candidate sets instead of failing.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor { return &RuleExtractor{} }

func (x *RuleExtractor) Extract(_ context.Context, utterance string, stage Stage) (Extraction, error) {
	norm := normalizeText(utterance)
	if norm == "" {
		return Extraction{Intent: IntentUnintelligible}, nil
	}

	// A bare number is interpreted against the slot currently being
	// requested: "20" after asking party size means 20 guests, not 8pm.
	if bareNumRe.MatchString(norm) {
		ext := Extraction{Intent: IntentBookingProgress, Corrected: map[SlotName]bool{}}
		var bound SlotName
		switch stage {
		case StageCollectingTime:
			ext.Times = []string{norm}
			bound = SlotTime
		case StageCollectingDate:
			ext.Dates = []string{norm}
			bound = SlotDate
		default:
			ext.PartySizes = []string{norm}
			bound = SlotPartySize
		}
		if stage == StageAwaitingConfirmation {
			ext.Corrected[bound] = true
		}
		return ext, nil
	}

	times, clockSpans := parseTimes(norm)
	ext := Extraction{
		Dates:      parseDates(norm),
		Times:      times,
		PartySizes: parsePartySizes(norm, clockSpans),
		Corrected:  map[SlotName]bool{},
	}

	corrected := hasCorrectionCue(norm) || stage == StageAwaitingConfirmation
	if corrected {
		for _, name := range SlotOrder {
			if len(ext.candidates(name)) > 0 {
				ext.Corrected[name] = true
			}
		}
	}

	switch {
	case ext.hasUpdates():
		ext.Intent = IntentBookingProgress
	case looksLikeQuestion(utterance, norm) && !mentionsBooking(norm):
		ext.Intent = IntentFactualQuestion
	case hasAffirmative(norm) || hasNegative(norm):
		ext.Intent = IntentConfirmation
		ext.Negative = hasNegative(norm)
		ext.Affirmative = hasAffirmative(norm) && !ext.Negative
	case isGreeting(norm) || mentionsBooking(norm):
		ext.Intent = IntentBookingProgress
	default:
		ext.Intent = IntentOffTopic
	}
	return ext, nil
}
