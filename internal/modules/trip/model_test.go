// README: Transition table tests (no database).
package trip

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// forward flow
		{StatusDraft, StatusDispatched, true},
		{StatusDispatched, StatusCompleted, true},
		// cancellation from both live states
		{StatusDraft, StatusCancelled, true},
		{StatusDispatched, StatusCancelled, true},
		// invalid: skipping dispatch
		{StatusDraft, StatusCompleted, false},
		// invalid: terminal states have no outgoing transitions
		{StatusCompleted, StatusDraft, false},
		{StatusCompleted, StatusDispatched, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		{StatusCancelled, StatusDispatched, false},
		// invalid: backwards
		{StatusDispatched, StatusDraft, false},
		// invalid: self loops
		{StatusDraft, StatusDraft, false},
		{StatusDispatched, StatusDispatched, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusDraft, false},
		{StatusDispatched, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Errorf("%s.Terminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}
