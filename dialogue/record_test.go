package dialogue

import (
	"testing"
	"time"
)

func TestCloneIsDeep(t *testing.T) {
	rec := NewRecord()
	rec.Stage = StageCollectingTime
	rec.Slots.Date = Ambiguous("Saturday", "Sunday")
	rec.PendingTopics = []PendingTopic{{Stage: StageCollectingTime}}
	rec.History = []TurnEntry{{Utterance: "this weekend", Kind: DecisionClarify, At: time.Now().UTC()}}
	rec.Violations = 1

	cp := rec.Clone()
	cp.Stage = StageCompleted
	cp.Slots.Date.Candidates[0] = "Friday"
	cp.Slots.Date.Value = "Friday"
	cp.PendingTopics[0].Stage = StageCompleted
	cp.History[0].Utterance = "tampered"
	cp.Violations = 99

	if rec.Stage != StageCollectingTime {
		t.Error("stage shared")
	}
	if rec.Slots.Date.Candidates[0] != "Saturday" || rec.Slots.Date.Value != "" {
		t.Errorf("slot state shared: %+v", rec.Slots.Date)
	}
	if rec.PendingTopics[0].Stage != StageCollectingTime {
		t.Error("pending topics shared")
	}
	if rec.History[0].Utterance != "this weekend" {
		t.Error("history shared")
	}
	if rec.Violations != 1 {
		t.Error("violations shared")
	}
}

func TestPendingTopicStack(t *testing.T) {
	rec := NewRecord()
	rec.Stage = StageCollectingTime

	if !rec.pushPending() {
		t.Fatal("first push refused")
	}
	if rec.pushPending() {
		t.Fatal("push beyond capacity accepted")
	}

	top, ok := rec.popPending()
	if !ok || top.Stage != StageCollectingTime {
		t.Fatalf("pop = (%+v, %v)", top, ok)
	}
	if _, ok := rec.popPending(); ok {
		t.Fatal("pop from empty stack succeeded")
	}
}
