package booking

import (
	"errors"
	"strings"
)

// Action is a caller-requested booking transition. The set is closed:
// anything outside it is rejected at the boundary.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

var ErrInvalidAction = errors.New("invalid booking action")

// ParseAction normalizes (lowercases+trims) and validates an action string.
func ParseAction(in string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(in)))
	if action.Valid() {
		return action, nil
	}
	return "", ErrInvalidAction
}

// Valid reports whether action is one of the allowed action constants.
func (action Action) Valid() bool {
	switch action {
	case ActionConfirm, ActionCancel:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Action.
func (action Action) String() string {
	return string(action)
}

// Target returns the status this action drives a booking toward.
func (action Action) Target() Status {
	switch action {
	case ActionConfirm:
		return StatusConfirmed
	case ActionCancel:
		return StatusCancelled
	default:
		return ""
	}
}
