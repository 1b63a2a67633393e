package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/respond"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"
)

const rendererPrompt = `## Identity & Role

You are a friendly, patient assistant for a restaurant, handling table
reservations in chat. You receive a structured decision made by the
booking engine and must phrase it for the guest in one or two short,
warm sentences.

## Rules

- Say exactly what the decision says, nothing more. Never invent
  availability, menu facts, or reservation details.
- "ask_slot": ask for the named slot.
- "clarify": ask the guest to pick between the listed candidates.
- "confirm": read back date, time and party size, then ask the guest to
  reply "yes please confirm" or name a change.
- "completed": thank the guest and confirm the table is reserved.
- "answer": give the provided answer, then steer back to the reservation.
- "deflect": politely decline to go off topic and steer back.
- "reprompt": apologize and ask the guest to rephrase.
- "rejected": respond per the verdict; stay polite, firmer if escalate
  is true. Never repeat offensive content back.

## Decision

%s`

// Renderer implements respond.Renderer over the Gemini API, with the
// deterministic template renderer as fallback so a model outage never
// leaves a turn without prose.
type Renderer struct {
	client   *genai.Client
	fallback respond.Renderer
}

func NewRenderer(ctx context.Context, apiKey string) (*Renderer, error) {
	client, err := newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return &Renderer{client: client, fallback: respond.NewTemplateRenderer()}, nil
}

func (r *Renderer) Render(ctx context.Context, dec dialogue.Decision) (string, error) {
	payload, err := sonic.MarshalString(dec)
	if err != nil {
		return r.fallback.Render(ctx, dec)
	}

	out, err := generate(ctx, r.client, fmt.Sprintf(rendererPrompt, payload))
	if err != nil {
		log.Printf("⚠️ Gemini renderer unavailable, using template: %v", err)
		return r.fallback.Render(ctx, dec)
	}
	return strings.TrimSpace(out), nil
}
