// WorkFlow Pro Mock Backend
//
// Runs the mock application server the E2E harness tests against: auth,
// project API, and the login/dashboard pages. Useful for driving the
// harness interactively against a fixed port.
package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/workflowpro/e2e/cmd/workflowpro-mock/server"
)

func main() {
	fmt.Println(`
WorkFlow Pro Mock Backend
=========================
Seeded tenants: company1, company2, company3
Users: admin/manager/employee @<tenant>.com, password "password123"

Open http://localhost:8000/login to sign in.`)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg := server.DefaultConfig()
	cfg.Addr = ":8000"

	srv := server.NewServer(cfg, logger)
	addr, err := srv.Start()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("Listening on %s", addr)

	// Block forever
	select {}
}
