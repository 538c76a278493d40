package reconciler

import "resource-dispatcher/internal/config"

// Config holds the settings of the sync Engine.
type Config struct {
	// Label is the parent label that must equal "true" for the parent to be
	// reconciled.
	Label string

	// ResyncAfterSeconds is returned to the controller while the observed
	// children do not match the desired ones.
	ResyncAfterSeconds int
}

// Outcome classifies a single sync call.
type Outcome string

const (
	// OutcomeGated means the parent was not in scope and nothing was generated.
	OutcomeGated Outcome = "gated"

	// OutcomeReady means the observed children match the desired counts.
	OutcomeReady Outcome = "ready"

	// OutcomeNotReady means at least one tracked kind has a different number
	// of observed children than desired.
	OutcomeNotReady Outcome = "not_ready"

	// OutcomeMalformed means the request could not be evaluated.
	OutcomeMalformed Outcome = "malformed"

	// OutcomeError means manifest generation or counting failed.
	OutcomeError Outcome = "error"
)

// gateValue is the only label value that enables reconciliation.
const gateValue = "true"

func (c Config) withDefaults() Config {
	if c.ResyncAfterSeconds <= 0 {
		c.ResyncAfterSeconds = config.DefaultResyncAfterSeconds
	}
	if c.Label == "" {
		c.Label = config.DefaultLabel
	}
	return c
}
