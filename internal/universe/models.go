package universe

import (
	"time"

	"cosmos-server/internal/engine"

	"github.com/google/uuid"
)

// Universe is the persisted record of one simulation: immutable identity
// and constants, the evolving snapshot, and an optimistic-locking version
// bumped on every save.
type Universe struct {
	ID            uuid.UUID                 `json:"id"`
	Name          string                    `json:"name"`
	Seed          string                    `json:"seed"`
	Status        engine.Status             `json:"status"`
	EndCondition  engine.EndCondition       `json:"end_condition,omitempty"`
	Constants     engine.Constants          `json:"constants"`
	State         engine.State              `json:"state"`
	Anomalies     []engine.Anomaly          `json:"anomalies"`
	Civilizations []engine.Civilization     `json:"civilizations"`
	Events        []engine.SignificantEvent `json:"events"`
	Metrics       engine.Metrics            `json:"metrics"`
	RandomState   uint32                    `json:"-"`
	Version       int                       `json:"version"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// Simulation assembles the engine snapshot from the persisted record.
func (u *Universe) Simulation() *engine.Simulation {
	return &engine.Simulation{
		Constants:     u.Constants,
		State:         u.State,
		Anomalies:     u.Anomalies,
		Civilizations: u.Civilizations,
		Events:        u.Events,
		Metrics:       u.Metrics,
		Status:        u.Status,
		EndCondition:  u.EndCondition,
		RandomState:   u.RandomState,
	}
}

// ApplySimulation copies an advanced snapshot back onto the record.
func (u *Universe) ApplySimulation(sim *engine.Simulation) {
	u.State = sim.State
	u.Anomalies = sim.Anomalies
	u.Civilizations = sim.Civilizations
	u.Events = sim.Events
	u.Metrics = sim.Metrics
	u.Status = sim.Status
	u.EndCondition = sim.EndCondition
	u.RandomState = sim.RandomState
}

// CreateUniverseRequest is the creation payload. Constants are optional;
// omitted constants fall back to present-day consensus values.
type CreateUniverseRequest struct {
	Name      string            `json:"name"`
	Seed      string            `json:"seed"`
	Constants *engine.Constants `json:"constants,omitempty"`
}

// AdvanceRequest asks for n sequential simulation steps. Zero means one.
type AdvanceRequest struct {
	Steps int `json:"steps"`
}

// AdvanceResponse reports the advanced universe plus what the requested
// steps produced.
type AdvanceResponse struct {
	Universe     *Universe                 `json:"universe"`
	NewAnomalies []engine.Anomaly          `json:"new_anomalies"`
	NewEvents    []engine.SignificantEvent `json:"new_events"`
}
