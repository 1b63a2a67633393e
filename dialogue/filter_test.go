package dialogue

import "testing"

func TestFilterVerdicts(t *testing.T) {
	f := NewLexiconFilter()
	rec := NewRecord()

	tests := []struct {
		utterance string
		want      VerdictClass
	}{
		{"I'd like to book a table for Sunday", VerdictClean},
		{"Sunday", VerdictClean},
		{"4pm", VerdictClean},
		{"20", VerdictClean},
		{"this weekend", VerdictClean},
		{"yes please confirm", VerdictClean},
		{"asdflkj asdfasdfsadf", VerdictGibberish},
		{"qwertzu xcvbnmls dfgjkq", VerdictGibberish},
		{"what the f..", VerdictProfane},
		{"WHAT THE F..", VerdictProfane},
		{"you're stupid", VerdictProfane},
		{"this is fucking ridiculous", VerdictProfane},
	}
	for _, tt := range tests {
		got := f.Evaluate(tt.utterance, rec)
		if got.Class != tt.want {
			t.Errorf("Evaluate(%q) = %s, want %s", tt.utterance, got.Class, tt.want)
		}
	}
}

func TestFilterShortRepliesNotGibberish(t *testing.T) {
	f := NewLexiconFilter()
	for _, u := range []string{"Sunday", "4pm", "7:30pm", "20", "ok"} {
		if got := f.Evaluate(u, NewRecord()); got.Class != VerdictClean {
			t.Errorf("short reply %q flagged as %s", u, got.Class)
		}
	}
}

func TestFilterContradiction(t *testing.T) {
	rec := NewRecord()
	rec.Slots.PartySize = Resolved("4")
	rec.Slots.Date = Resolved("Sunday")
	f := NewLexiconFilter()

	if got := f.Evaluate("we will be 6 people", rec); got.Class != VerdictContradictory {
		t.Fatalf("restated party size should contradict, got %s", got.Class)
	}

	// An explicit correction is not a contradiction.
	if got := f.Evaluate("actually make it 6 people", rec); got.Class != VerdictClean {
		t.Fatalf("correction flagged as %s", got.Class)
	}

	// Restating the same value is fine.
	if got := f.Evaluate("4 people on Sunday", rec); got.Class != VerdictClean {
		t.Fatalf("consistent restatement flagged as %s", got.Class)
	}

	if got := f.Evaluate("monday", rec); got.Class != VerdictContradictory {
		t.Fatalf("restated date should contradict, got %s", got.Class)
	}

	// During confirmation any restated value is a requested change.
	rec.Stage = StageAwaitingConfirmation
	if got := f.Evaluate("monday", rec); got.Class != VerdictClean {
		t.Fatalf("changed value at confirmation flagged as %s", got.Class)
	}
	if got := f.Evaluate("we will be 6 people", rec); got.Class != VerdictClean {
		t.Fatalf("changed party size at confirmation flagged as %s", got.Class)
	}
}

func TestFilterDoesNotMutateRecord(t *testing.T) {
	f := NewLexiconFilter()
	rec := NewRecord()
	rec.Slots.Date = Resolved("Sunday")
	before := rec.Clone()

	f.Evaluate("what the f..", rec)
	f.Evaluate("asdflkj asdfasdfsadf", rec)

	if rec.Stage != before.Stage || !rec.Slots.Date.Equal(before.Slots.Date) ||
		rec.Violations != before.Violations {
		t.Fatal("filter must not mutate the record")
	}
}
