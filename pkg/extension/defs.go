package extension

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"

import (
	"github.com/OCAP2/objectives/internal/dispatcher"
)

// state is the process-wide configuration of the exported entry points.
type state struct {
	// version is returned by RVExtensionVersion when the host loads the library
	version string

	dispatcher *dispatcher.Dispatcher
}

var current = state{version: "No version set"}

// SetVersion sets the version string reported to the host on load.
func SetVersion(version string) {
	current.version = version
}

// SetDispatcher sets the dispatcher every host call is routed to.
func SetDispatcher(d *dispatcher.Dispatcher) {
	current.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	return current.dispatcher
}
