package respond

import (
	"context"
	"strings"
	"testing"

	"github.com/room4-2/TableTalk/dialogue"
)

func TestTemplateRenderer(t *testing.T) {
	r := NewTemplateRenderer()
	ctx := context.Background()

	resolved := dialogue.NewSlots()
	resolved.Date = dialogue.Resolved("Sunday")
	resolved.Time = dialogue.Resolved("4pm")
	resolved.PartySize = dialogue.Resolved("20")

	tests := []struct {
		name     string
		dec      dialogue.Decision
		contains []string
	}{
		{
			name:     "ask for date",
			dec:      dialogue.Decision{Kind: dialogue.DecisionAskSlot, Slot: dialogue.SlotDate},
			contains: []string{"What date"},
		},
		{
			name: "ask for time references the chosen date",
			dec: dialogue.Decision{
				Kind:  dialogue.DecisionAskSlot,
				Slot:  dialogue.SlotTime,
				Slots: resolved,
			},
			contains: []string{"What time", "Sunday"},
		},
		{
			name: "clarify lists candidates",
			dec: dialogue.Decision{
				Kind:       dialogue.DecisionClarify,
				Slot:       dialogue.SlotDate,
				Candidates: []string{"Saturday", "Sunday"},
			},
			contains: []string{"Saturday or Sunday"},
		},
		{
			name: "confirmation summary",
			dec: dialogue.Decision{
				Kind:  dialogue.DecisionConfirm,
				Stage: dialogue.StageAwaitingConfirmation,
				Slots: resolved,
			},
			contains: []string{"Date: Sunday", "Time: 4pm", "Persons: 20", "yes please confirm"},
		},
		{
			name:     "completed",
			dec:      dialogue.Decision{Kind: dialogue.DecisionCompleted, Stage: dialogue.StageCompleted},
			contains: []string{"reserved"},
		},
		{
			name: "answer resumes the booking",
			dec: dialogue.Decision{
				Kind:       dialogue.DecisionAnswer,
				Answer:     "The capital of Australia is Canberra.",
				ResumeSlot: dialogue.SlotTime,
			},
			contains: []string{"Canberra", "back to your reservation", "What time"},
		},
		{
			name: "deflection steers back",
			dec: dialogue.Decision{
				Kind:       dialogue.DecisionDeflect,
				ResumeSlot: dialogue.SlotPartySize,
			},
			contains: []string{"happy to help with your table", "How many people"},
		},
		{
			name: "profanity rebuke",
			dec: dialogue.Decision{
				Kind:    dialogue.DecisionRejected,
				Verdict: dialogue.VerdictProfane,
			},
			contains: []string{"respectful"},
		},
		{
			name: "escalated rebuke",
			dec: dialogue.Decision{
				Kind:     dialogue.DecisionRejected,
				Verdict:  dialogue.VerdictProfane,
				Escalate: true,
			},
			contains: []string{"insist"},
		},
		{
			name: "contradiction callout",
			dec: dialogue.Decision{
				Kind:       dialogue.DecisionRejected,
				Verdict:    dialogue.VerdictContradictory,
				ResumeSlot: dialogue.SlotDate,
			},
			contains: []string{"doesn't match what you told me earlier"},
		},
		{
			name:     "reprompt",
			dec:      dialogue.Decision{Kind: dialogue.DecisionReprompt},
			contains: []string{"rephrase"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := r.Render(ctx, tt.dec)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("output %q missing %q", text, want)
				}
			}
		})
	}
}
