package gate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFeature is returned when no requirement is configured for a feature.
var ErrUnknownFeature = errors.New("unknown feature")

// Rules maps feature names to their requirements.
type Rules map[string]Requirement

// Validate checks that every rule names a token type and a known condition.
func (r Rules) Validate() error {
	for name, req := range r {
		if strings.TrimSpace(req.TokenType) == "" {
			return fmt.Errorf("gate %q: token type is required", name)
		}
		if _, err := ParseCondition(string(req.Condition)); err != nil {
			return fmt.Errorf("gate %q: %w", name, err)
		}
	}
	return nil
}

// Check evaluates the requirement configured for feature.
func (r Rules) Check(feature string, ctx Context) (bool, error) {
	req, ok := r[strings.ToLower(strings.TrimSpace(feature))]
	if !ok {
		return false, ErrUnknownFeature
	}
	return Evaluate(req, ctx), nil
}
