package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/satlayer/counter-oracle-bvs/aggregator/api"
	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
	"github.com/satlayer/counter-oracle-bvs/aggregator/ledger"
	"github.com/satlayer/counter-oracle-bvs/aggregator/oracle"
	"github.com/satlayer/counter-oracle-bvs/aggregator/registry"
	"github.com/satlayer/counter-oracle-bvs/aggregator/svc"
)

// main is the entry point of the program.
//
// It wires the registry, ledger and oracle channel into the coordinator and
// starts three loops:
// - the oracle listener forwarding contract answers to the response queue,
// - the monitor applying responses to the state machine,
// - an HTTP server receiving operator claims and serving queries.
func main() {
	ctx := context.Background()
	core.InitStore()

	reg := registry.New()
	led := ledger.New()
	coordinator := svc.NewCoordinator(reg, led, oracle.NewChainChannel(), core.P, core.C.Chain.CounterAddr, core.L)

	go oracle.NewListener().Run(ctx)
	go svc.NewMonitor(coordinator).Run(ctx)
	startHttp(coordinator, reg, led)
}

// startHttp starts an HTTP server to receive operator claims.
//
// It sets up routes and starts the server at the specified host.
// Returns no value.
func startHttp(coordinator *svc.Coordinator, reg *registry.Registry, led *ledger.Ledger) {
	router := gin.Default()
	// setup routes
	api.SetupRoutes(router, api.NewServer(coordinator, reg, led, core.P))
	// start server
	core.L.Info(fmt.Sprintf("Start server at {%s}", core.C.App.Host))
	if err := router.Run(core.C.App.Host); err != nil {
		core.L.Error(fmt.Sprintf("Failed to start server due to {%s}", err))
	}
}
