package oauth

import (
	"testing"
)

func TestStateManager_GenerateState(t *testing.T) {
	sm := &StateManager{}

	state, err := sm.GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() failed: %v", err)
	}

	if state == "" {
		t.Error("GenerateState() returned empty state")
	}

	if len(state) != 64 { // 32 bytes = 64 hex characters
		t.Errorf("GenerateState() length = %d, want 64", len(state))
	}

	state2, err := sm.GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() second call failed: %v", err)
	}

	if state == state2 {
		t.Error("GenerateState() should generate unique states")
	}
}
