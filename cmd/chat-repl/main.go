// chat-repl drives the dialogue engine from the terminal with the
// deterministic renderer. Useful for poking at the state machine without
// a server or any API keys.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/knowledge"
	"github.com/room4-2/TableTalk/respond"
)

func main() {
	engine := dialogue.NewEngine(
		dialogue.NewLexiconFilter(),
		dialogue.NewRuleExtractor(),
		knowledge.NewBase(),
		3,
	)
	renderer := respond.NewTemplateRenderer()
	rec := dialogue.NewRecord()
	ctx := context.Background()

	fmt.Println("🍽️  Table booking assistant. Type 'quit' to exit.")
	fmt.Println("assistant: Hello! I can help you book a table. What date would you like to dine with us?")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		dec, err := engine.Step(ctx, rec, line)
		if err != nil {
			log.Printf("turn failed: %v", err)
			continue
		}
		text, err := renderer.Render(ctx, dec)
		if err != nil {
			log.Printf("render failed: %v", err)
			continue
		}

		fmt.Printf("assistant: %s\n", text)
		fmt.Printf("           [stage=%s kind=%s date=%s time=%s party=%s]\n",
			dec.Stage, dec.Kind, dec.Slots.Date, dec.Slots.Time, dec.Slots.PartySize)

		if dec.Stage == dialogue.StageCompleted {
			fmt.Println("✅ Reservation completed")
			break
		}
	}
}
