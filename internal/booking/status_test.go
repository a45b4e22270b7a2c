package booking

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "PROCESSING", "APPROVED", "REJECTED", "CANCELLED", "COMPLETED"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseStatus("DRAFT"); err == nil {
		t.Errorf("expected error for unknown status")
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusApproved},
		{StatusProcessing, StatusRejected},
		{StatusProcessing, StatusCancelled},
		{StatusApproved, StatusCompleted},
		{StatusApproved, StatusCancelled},
	}
	for _, c := range allowed {
		if !CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusApproved}, // must pass through PROCESSING
		{StatusPending, StatusCompleted},
		{StatusProcessing, StatusCompleted},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusPending},
	}
	for _, c := range denied {
		if CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s denied", c.from, c.to)
		}
	}
}

func TestActive(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusApproved} {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestPriorityOrdering(t *testing.T) {
	order := []Status{StatusPending, StatusProcessing, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted}
	for i := 1; i < len(order); i++ {
		if order[i-1].Priority() >= order[i].Priority() {
			t.Errorf("expected %s to sort before %s", order[i-1], order[i])
		}
	}
}
