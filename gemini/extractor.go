package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/room4-2/TableTalk/dialogue"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"
)

const extractionPrompt = `You are the intent and slot extractor for a restaurant
reservation assistant. The conversation is currently at stage %q.

Classify the user message into ONE intent:
- "booking_progress": booking a table, providing date/time/party size, greetings
- "factual_question": general world knowledge questions unrelated to the restaurant
- "confirmation": confirming or declining the summarized reservation
- "off_topic_smalltalk": chit-chat unrelated to booking that is not a factual question
- "unintelligible": nonsensical or incomprehensible text

Extract candidate slot values:
- Vague expressions expand to candidate sets: "this weekend" -> ["Saturday","Sunday"].
- Compound clauses ("this weekend or maybe Monday morning") emit every candidate.
- A bare number at stage COLLECTING_PARTY_SIZE is a party size; at
  COLLECTING_TIME it is a time; at COLLECTING_DATE it is a date.
- List a slot in corrected_slots only when the user explicitly changes an
  earlier value ("actually make it Sunday").

Return ONLY a raw JSON object, no markdown, no explanation:
{
  "intent": "...",
  "date_candidates": [],
  "time_candidates": [],
  "party_size_candidates": [],
  "corrected_slots": [],
  "affirmative": false,
  "negative": false
}

User message: %q`

// extractionWire is the JSON contract the model must honor. Anything that
// fails to parse degrades to unintelligible, never to an error.
type extractionWire struct {
	Intent              string   `json:"intent"`
	DateCandidates      []string `json:"date_candidates"`
	TimeCandidates      []string `json:"time_candidates"`
	PartySizeCandidates []string `json:"party_size_candidates"`
	CorrectedSlots      []string `json:"corrected_slots"`
	Affirmative         bool     `json:"affirmative"`
	Negative            bool     `json:"negative"`
}

// Extractor implements dialogue.Extractor over the Gemini API. The state
// machine does not change when this replaces the rule extractor; only the
// quality of the extraction does.
type Extractor struct {
	client *genai.Client
}

func NewExtractor(ctx context.Context, apiKey string) (*Extractor, error) {
	client, err := newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return &Extractor{client: client}, nil
}

// Extract asks the model for the structured extraction. A transport
// failure is an error (the turn fails without touching state); malformed
// model output is not (it degrades to unintelligible).
func (x *Extractor) Extract(ctx context.Context, utterance string, stage dialogue.Stage) (dialogue.Extraction, error) {
	out, err := generate(ctx, x.client, fmt.Sprintf(extractionPrompt, stage, utterance))
	if err != nil {
		return dialogue.Extraction{}, err
	}
	return parseExtraction(out), nil
}

// parseExtraction pulls the JSON object out of the model reply, tolerating
// markdown fences and surrounding chatter.
func parseExtraction(out string) dialogue.Extraction {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end <= start {
		return dialogue.Extraction{Intent: dialogue.IntentUnintelligible}
	}

	var wire extractionWire
	if err := sonic.UnmarshalString(out[start:end+1], &wire); err != nil {
		return dialogue.Extraction{Intent: dialogue.IntentUnintelligible}
	}

	ext := dialogue.Extraction{
		Intent:      dialogue.Intent(wire.Intent),
		Dates:       wire.DateCandidates,
		Times:       wire.TimeCandidates,
		PartySizes:  wire.PartySizeCandidates,
		Corrected:   map[dialogue.SlotName]bool{},
		Affirmative: wire.Affirmative,
		Negative:    wire.Negative,
	}
	for _, name := range wire.CorrectedSlots {
		switch dialogue.SlotName(name) {
		case dialogue.SlotDate, dialogue.SlotTime, dialogue.SlotPartySize:
			ext.Corrected[dialogue.SlotName(name)] = true
		}
	}
	return ext
}
