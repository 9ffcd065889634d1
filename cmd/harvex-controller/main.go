package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/HarvexIO/harvex/internal/config"
	httpserver "github.com/HarvexIO/harvex/internal/http"
	v1 "github.com/HarvexIO/harvex/internal/http/v1"
	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/scheduler"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		listen     = flag.String("listen", "", "HTTP listen address (overrides config)")
		target     = flag.String("target", "", "restrict planning to a single target id")
		sim        = flag.Bool("sim", false, "run against the built-in simulated fleet")
		debug      = flag.Bool("debug", false, "verbose per-batch tracing")
		repeat     = flag.Bool("repeat", true, "keep planning cycles until interrupted")
		prepOnly   = flag.Bool("prep-only", false, "plan prep batches only, no extraction")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "target":
			cfg.Target = *target
		case "debug":
			cfg.Debug = *debug
		case "repeat":
			cfg.Repeat = *repeat
		case "prep-only":
			cfg.PrepOnly = *prepOnly
		}
	})

	sub := newSubstrate(cfg, *sim)

	loop := scheduler.NewLoop(cfg.LoopConfig(), sub)
	go func() {
		if err := loop.Run(context.Background()); err != nil && err != context.Canceled {
			log.Printf("controller: scheduling loop exited: %v", err)
		}
	}()

	srv := httpserver.NewServer(v1.Deps{Loop: loop})
	log.Printf("harvex-controller listening on %s", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// simWorkers is the built-in demonstration fleet: a handful of nodes with
// uneven capacity, one of them partially consumed by outside load.
func simWorkers() []inventory.WorkerNode {
	return []inventory.WorkerNode{
		{ID: "sim-w1", TotalCapacity: 128},
		{ID: "sim-w2", TotalCapacity: 64},
		{ID: "sim-w3", TotalCapacity: 64, UsedCapacity: 16},
		{ID: "sim-w4", TotalCapacity: 32, Reserved: 8},
	}
}

func simTargets() []inventory.TargetResource {
	return []inventory.TargetResource{
		{
			ID: "sim-alpha", Controlled: true, CurrentValue: 950, MaxValue: 1000,
			CurrentDefense: 3.2, MinDefense: 3, EligibilityLevel: 1,
			DepressDuration: 8 * time.Second, AmplifyDuration: 12 * time.Second, ExtractDuration: 6 * time.Second,
		},
		{
			ID: "sim-bravo", Controlled: true, CurrentValue: 400, MaxValue: 2000,
			CurrentDefense: 9, MinDefense: 4, EligibilityLevel: 1,
			DepressDuration: 14 * time.Second, AmplifyDuration: 20 * time.Second, ExtractDuration: 10 * time.Second,
		},
		{
			ID: "sim-charlie", Controlled: false, CurrentValue: 700, MaxValue: 900,
			CurrentDefense: 6, MinDefense: 5, EligibilityLevel: 2,
			DepressDuration: 10 * time.Second, AmplifyDuration: 15 * time.Second, ExtractDuration: 7 * time.Second,
		},
	}
}
