package modules

import (
	"context"

	"github.com/riverqueue/river"

	"eventforge.io/eventforge/internal/api/handlers"
	"eventforge.io/eventforge/internal/service"
)

// EventModule wires the event service. Build it after InitRiver so the
// audit recorder sees the River client.
type EventModule struct {
	service *service.EventService
}

// NewEventModule creates the event service on top of infra.
func NewEventModule(infra *Infrastructure) *EventModule {
	svc := service.NewEventService(
		infra.Events,
		infra.Tx,
		infra.AuditRecorder(),
		service.NewEventValidator(),
		service.NewUniformPicker(),
	)
	return &EventModule{service: svc}
}

// Service returns the event service for non-HTTP callers such as cmd/seed.
func (m *EventModule) Service() *service.EventService { return m.service }

func (m *EventModule) Name() string { return "event" }

func (m *EventModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Events = m.service
}

func (m *EventModule) RegisterWorkers(*river.Workers) {}

func (m *EventModule) Shutdown(context.Context) error { return nil }
