package audit

import (
	"time"

	"github.com/google/uuid"

	"transparency/pkg/domain"
)

// EventType names an auditable action.
type EventType string

const (
	EventRequestSubmitted   EventType = "esic_request_submitted"
	EventRequestAssigned    EventType = "esic_request_assigned"
	EventRequestAnswered    EventType = "esic_request_answered"
	EventAppealFiled        EventType = "esic_appeal_filed"
	EventAppealResolved     EventType = "esic_appeal_resolved"
	EventRequestClosed      EventType = "esic_request_closed"
	EventRequestExpired     EventType = "esic_request_expired"
	EventVisibilityChanged  EventType = "esic_visibility_changed"
	EventFinanceRecordAdded EventType = "finance_record_created"
)

// Event is emitted from services after a mutation is persisted. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        EventType       `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	TenantID    domain.TenantID `json:"tenant_id"`
	ActorID     domain.UserID   `json:"actor_id,omitempty"`
	ActorRole   domain.Role     `json:"actor_role,omitempty"`
	AggregateID string          `json:"aggregate_id"`
	Protocol    string          `json:"protocol,omitempty"`
	FromStatus  string          `json:"from_status,omitempty"`
	ToStatus    string          `json:"to_status,omitempty"`
	// RequestID is the HTTP correlation id when the event stems from a request.
	RequestID string `json:"request_id,omitempty"`
	// Client summarizes the caller's user agent.
	Client string `json:"client,omitempty"`
}
