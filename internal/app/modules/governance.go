package modules

import (
	"context"

	"github.com/riverqueue/river"

	"eventforge.io/eventforge/internal/api/handlers"
	"eventforge.io/eventforge/internal/jobs"
)

// GovernanceModule owns the audit trail: its River worker and the
// admin history endpoint.
type GovernanceModule struct {
	infra *Infrastructure
}

func NewGovernanceModule(infra *Infrastructure) *GovernanceModule {
	return &GovernanceModule{infra: infra}
}

func (m *GovernanceModule) Name() string { return "governance" }

func (m *GovernanceModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Audit = m.infra.AuditLogger
}

func (m *GovernanceModule) RegisterWorkers(workers *river.Workers) {
	river.AddWorker(workers, jobs.NewEventAuditWorker(m.infra.AuditLogger))
}

func (m *GovernanceModule) Shutdown(context.Context) error { return nil }
