package domain

import (
	"testing"
)

func summaryMatchesBoxes(t *testing.T, s *FulfillmentState) {
	t.Helper()

	want := map[string]int{}
	for _, b := range s.PackingList {
		for code, n := range b.Items {
			if n <= 0 {
				t.Errorf("box %d holds %d units of %q, counts must stay positive", b.ID, n, code)
			}
			want[code] += n
		}
	}

	if len(want) != len(s.PickedSummary) {
		t.Fatalf("summary has %d articles, want %d", len(s.PickedSummary), len(want))
	}
	for code, n := range want {
		if s.PickedSummary[code] != n {
			t.Errorf("summary[%q] = %d, want %d", code, s.PickedSummary[code], n)
		}
	}
}

func TestSummaryStaysConsistent(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")

	b1 := s.AddBox()
	b2 := s.AddBox()

	for i := 0; i < 3; i++ {
		if err := s.AddUnit(b1, "A100"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := s.AddUnit(b2, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddUnit(b2, "B200"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RemoveUnit(b1, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaryMatchesBoxes(t, s)

	if got := s.Picked("A100"); got != 3 {
		t.Fatalf("picked A100 = %d, want 3", got)
	}
	if got := s.Picked("B200"); got != 1 {
		t.Fatalf("picked B200 = %d, want 1", got)
	}
}

func TestRemoveUnitIsIdempotentAtZero(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")
	b := s.AddBox()

	if err := s.AddUnit(b, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RemoveUnit(b, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// article at zero leaves the map entirely
	if _, ok := s.PackingList[0].Items["A100"]; ok {
		t.Fatal("article should be removed from box at zero")
	}

	// removing again is a no-op, not an error
	if err := s.RemoveUnit(b, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Picked("A100"); got != 0 {
		t.Fatalf("picked = %d, want 0", got)
	}
	summaryMatchesBoxes(t, s)
}

func TestRemoveUnitNeverAffectsOtherArticles(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")
	b := s.AddBox()

	_ = s.AddUnit(b, "B200")
	if err := s.RemoveUnit(b, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.Picked("B200"); got != 1 {
		t.Fatalf("picked B200 = %d, want 1", got)
	}
}

func TestBoxIDsAreNeverReused(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")

	if id := s.AddBox(); id != 1 {
		t.Fatalf("first box id = %d, want 1", id)
	}
	if id := s.AddBox(); id != 2 {
		t.Fatalf("second box id = %d, want 2", id)
	}
	if id := s.AddBox(); id != 3 {
		t.Fatalf("third box id = %d, want 3", id)
	}
}

func TestAddUnitUnknownBox(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")

	err := s.AddUnit(99, "A100")
	if err == nil {
		t.Fatal("expected error for unknown box")
	}
}

func TestSignalSequenceForTargetTwo(t *testing.T) {
	want := []PickSignal{SignalProgressing, SignalCompleted, SignalOverpick}
	for i, w := range want {
		if got := SignalFor(i+1, 2); got != w {
			t.Errorf("SignalFor(%d, 2) = %q, want %q", i+1, w, got)
		}
	}
	if got := SignalFor(0, 2); got != SignalProgressing {
		t.Errorf("SignalFor(0, 2) = %q, want progressing", got)
	}
}

func TestResetPacking(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")
	b := s.AddBox()
	_ = s.AddUnit(b, "A100")
	s.DeclaredBoxCount = 2

	s.ResetPacking()

	if len(s.PackingList) != 0 {
		t.Fatalf("packing list has %d boxes after reset, want 0", len(s.PackingList))
	}
	if len(s.PickedSummary) != 0 {
		t.Fatalf("summary has %d articles after reset, want 0", len(s.PickedSummary))
	}
	if s.DeclaredBoxCount != 0 {
		t.Fatalf("declared box count = %d after reset, want 0", s.DeclaredBoxCount)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewFulfillmentState("OC:1:100")
	b := s.AddBox()
	_ = s.AddUnit(b, "A100")

	c := s.Clone()
	_ = c.AddUnit(b, "A100")

	if got := s.Picked("A100"); got != 1 {
		t.Fatalf("mutating the clone changed the original: picked = %d, want 1", got)
	}
	if got := c.Picked("A100"); got != 2 {
		t.Fatalf("clone picked = %d, want 2", got)
	}
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"start_picking", "complete_picking", "approve", "reject"} {
		if _, err := ParseAction(valid); err != nil {
			t.Errorf("ParseAction(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseAction("ship"); err == nil {
		t.Error("ParseAction accepted an unknown action")
	}
}
