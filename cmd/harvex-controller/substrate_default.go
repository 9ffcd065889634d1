//go:build !grpcgen

package main

import (
	"log"

	"github.com/HarvexIO/harvex/internal/config"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// newSubstrate without the agent link compiled in: the simulator is the only
// execution backend, so --sim is implied.
func newSubstrate(cfg config.Config, sim bool) substrate.Substrate {
	if !sim {
		log.Printf("controller: built without grpcgen, no live agent link; using the --sim fleet")
	}
	return substrate.NewSim(simWorkers(), simTargets())
}
