package plugin

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrTooManyPlayers = errors.New("too many players")

type UnknownGameTypeError struct {
	GameType  string
	Available []string
}

func (e *UnknownGameTypeError) Error() string {
	return fmt.Sprintf("unknown game type %q, available: %s", e.GameType, strings.Join(e.Available, ", "))
}

// RuleViolation is returned by Game.Apply for a move the rules don't allow.
type RuleViolation struct {
	Reason string
}

func (e *RuleViolation) Error() string {
	return "rule violation: " + e.Reason
}

func NewRuleViolation(format string, args ...interface{}) *RuleViolation {
	return &RuleViolation{
		Reason: fmt.Sprintf(format, args...),
	}
}

func IsRuleViolation(err error) (*RuleViolation, bool) {
	var violation *RuleViolation
	ok := errors.As(err, &violation)
	return violation, ok
}
