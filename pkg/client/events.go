package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/flaglab/flagkit/pkg/decision"
)

// DecisionType distinguishes what kind of lookup produced a DecisionEvent.
type DecisionType string

const (
	// DecisionExperiment is an experiment variation lookup.
	DecisionExperiment DecisionType = "experiment"
	// DecisionFeature is a feature on/off lookup.
	DecisionFeature DecisionType = "feature"
	// DecisionVariable is a feature variable lookup.
	DecisionVariable DecisionType = "variable"
)

// DecisionEvent is published to registered observers after every successful
// decide call. The user context is a detached copy; observers may hold it.
type DecisionEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
	Type      DecisionType
	Decision  decision.Decision
	User      decision.UserContext
}

func newDecisionEvent(typ DecisionType, d decision.Decision, user decision.UserContext) DecisionEvent {
	return DecisionEvent{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Decision:  d,
		User:      user.Clone(),
	}
}
