// Package respond turns structured dialogue decisions into user-facing
// prose. The dialogue core never produces prose itself; everything the
// user reads crosses this boundary.
package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/room4-2/TableTalk/dialogue"
)

// Renderer produces the user-facing sentences for one decision.
type Renderer interface {
	Render(ctx context.Context, dec dialogue.Decision) (string, error)
}

// TemplateRenderer is the deterministic renderer. It never fails, which
// also makes it the fallback when an LLM renderer is unavailable.
type TemplateRenderer struct{}

func NewTemplateRenderer() *TemplateRenderer { return &TemplateRenderer{} }

func (r *TemplateRenderer) Render(_ context.Context, dec dialogue.Decision) (string, error) {
	switch dec.Kind {
	case dialogue.DecisionAskSlot:
		return askFor(dec.Slot, dec.Slots), nil

	case dialogue.DecisionClarify:
		return fmt.Sprintf("Do you prefer %s?", humanJoin(dec.Candidates)), nil

	case dialogue.DecisionConfirm:
		return fmt.Sprintf(
			"Here are your reservation details. Date: %s, Time: %s, Persons: %s. "+
				`Please respond with "yes please confirm" or let me know for any change.`,
			dec.Slots.Date.Value, dec.Slots.Time.Value, dec.Slots.PartySize.Value), nil

	case dialogue.DecisionCompleted:
		return "Thanks for the confirmation, the table will be reserved for you. See you soon.", nil

	case dialogue.DecisionAnswer:
		return dec.Answer + " Now, back to your reservation. " + resumePrompt(dec), nil

	case dialogue.DecisionDeflect:
		return "I don't have information on that, but I'd be happy to help with your table. " + resumePrompt(dec), nil

	case dialogue.DecisionReprompt:
		return "I'm sorry, I didn't catch that. Could you rephrase?", nil

	case dialogue.DecisionRejected:
		return rejection(dec), nil
	}
	return "I'm here to help with your reservation. " + resumePrompt(dec), nil
}

func rejection(dec dialogue.Decision) string {
	switch dec.Verdict {
	case dialogue.VerdictProfane:
		if dec.Escalate {
			return "I have to insist we keep this conversation respectful. I can only continue with your reservation if we do."
		}
		return "Let's keep our conversation respectful, please. I'm here to help with your restaurant needs."
	case dialogue.VerdictContradictory:
		return "That doesn't match what you told me earlier. If you'd like to change a detail, just say so. " + resumePrompt(dec)
	default:
		return "I'm sorry, I didn't catch that. Could you rephrase? " + resumePrompt(dec)
	}
}

// resumePrompt references the stage the booking should return to, so a
// digression always ends with a nudge back on topic.
func resumePrompt(dec dialogue.Decision) string {
	if dec.Stage == dialogue.StageAwaitingConfirmation {
		return `Please respond with "yes please confirm" or let me know for any change.`
	}
	if dec.Stage == dialogue.StageCompleted {
		return "Your table is already reserved. See you soon."
	}
	return askFor(dec.ResumeSlot, dec.Slots)
}

func askFor(slot dialogue.SlotName, slots dialogue.Slots) string {
	switch slot {
	case dialogue.SlotTime:
		if slots.Date.IsResolved() {
			return fmt.Sprintf("What time would you like to come in on %s?", slots.Date.Value)
		}
		return "What time would you like to come in?"
	case dialogue.SlotPartySize:
		return "How many people will be joining?"
	default:
		return "What date would you like to dine with us?"
	}
}

// humanJoin renders candidates as "a, b or c".
func humanJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
	}
}
