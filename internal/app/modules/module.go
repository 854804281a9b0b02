// Package modules groups the composition root by domain. Each module owns
// the services, workers and handler dependencies of one area.
//
// Import Path: eventforge.io/eventforge/internal/app/modules
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"eventforge.io/eventforge/internal/api/handlers"
)

// Module is one domain unit of the composition root.
type Module interface {
	Name() string

	// ContributeServerDeps sets the handler dependencies the module owns.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterWorkers adds the module's River workers. Called before the
	// River client is created.
	RegisterWorkers(*river.Workers)

	Shutdown(context.Context) error
}

// Names lists module names in composition order.
func Names(mods []Module) []string {
	names := make([]string, 0, len(mods))
	for _, mod := range mods {
		if mod != nil {
			names = append(names, mod.Name())
		}
	}
	return names
}
