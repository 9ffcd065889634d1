//go:build grpcgen

package main

import (
	"log"
	"os"
	"time"

	"google.golang.org/grpc/credentials"

	"github.com/HarvexIO/harvex/internal/config"
	controllerserver "github.com/HarvexIO/harvex/internal/grpc/controller"
	"github.com/HarvexIO/harvex/internal/security/pki"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// newSubstrate with the agent link compiled in: --sim still selects the
// simulator, otherwise the loop plans against live agents. Workers join by
// registering over gRPC; targets come from the config file.
func newSubstrate(cfg config.Config, sim bool) substrate.Substrate {
	if sim {
		return substrate.NewSim(simWorkers(), simTargets())
	}
	targets := cfg.TargetInventory()
	if len(targets) == 0 {
		log.Printf("controller: no targets configured, live mode will plan nothing until targets are added")
	}
	hub := controllerserver.NewHub()
	agents := controllerserver.NewAgentSubstrate(hub, targets, cfg.ThreadCost)
	go serveAgentLink(controllerserver.NewAgentServiceServer(agents))
	return agents
}

func serveAgentLink(svc *controllerserver.AgentServiceServer) {
	addr := os.Getenv("HARVEX_GRPC_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	caCertPath := os.Getenv("HARVEX_CA_CERT")
	serverCertPath := os.Getenv("HARVEX_SERVER_CERT")
	serverKeyPath := os.Getenv("HARVEX_SERVER_KEY")
	if caCertPath == "" || serverCertPath == "" || serverKeyPath == "" {
		pkiDir := os.Getenv("HARVEX_PKI_DIR")
		if pkiDir == "" {
			pkiDir = "/var/lib/harvex/pki"
		}
		caCert, caKey, err := pki.EnsureCA(pkiDir, "Harvex Root CA", 365*24*time.Hour)
		if err != nil {
			log.Printf("grpc: EnsureCA: %v", err)
			return
		}
		serverCertPath, serverKeyPath, err = pki.IssueCertificate(pkiDir, "controller", "harvex-controller", true, caCert, caKey, 365*24*time.Hour, []string{"localhost", "127.0.0.1"})
		if err != nil {
			log.Printf("grpc: IssueCertificate: %v", err)
			return
		}
		caCertPath, _, _, _ = pki.Paths(pkiDir, "")
	}
	tlsCfg, err := pki.ServerTLSConfig(caCertPath, serverCertPath, serverKeyPath)
	if err != nil {
		log.Printf("grpc: server TLS config: %v", err)
		return
	}
	if err := controllerserver.RunTLS(addr, svc, credentials.NewTLS(tlsCfg)); err != nil {
		log.Printf("grpc: server exited: %v", err)
	}
}
