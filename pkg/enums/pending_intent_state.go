package enums

import "fmt"

// PendingIntentState tracks a parked add-to-cart waiting for authentication.
type PendingIntentState string

const (
	PendingIntentStateIdle     PendingIntentState = "idle"
	PendingIntentStateParked   PendingIntentState = "intent_parked"
	PendingIntentStateConsumed PendingIntentState = "intent_consumed"
)

var validPendingIntentStates = []PendingIntentState{
	PendingIntentStateIdle,
	PendingIntentStateParked,
	PendingIntentStateConsumed,
}

func (s PendingIntentState) String() string {
	return string(s)
}

func (s PendingIntentState) IsValid() bool {
	for _, candidate := range validPendingIntentStates {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParsePendingIntentState(value string) (PendingIntentState, error) {
	for _, candidate := range validPendingIntentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pending intent state %q", value)
}
