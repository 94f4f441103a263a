// lode-verifyd serves the puzzle verifier: descriptor registry, solution
// verification, the challenge protocol, batch scans, and the script builder.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lodecraft/lode-verify-go/internal/api"
	"github.com/lodecraft/lode-verify-go/internal/auth"
	"github.com/lodecraft/lode-verify-go/internal/ledger"
	"github.com/lodecraft/lode-verify-go/internal/protocol"
	"github.com/lodecraft/lode-verify-go/internal/store"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "listen address")
		dbPath       = flag.String("db", "lode-verify.db", "sqlite database path")
		tokenService = flag.String("admin-token-service", "lode-verifyd", "keyring service name for the admin token")
		tokenFile    = flag.String("admin-token-file", "", "fallback secrets file when no OS keyring is available")
		noAuth       = flag.Bool("no-auth", false, "disable admin token checks (local development)")
		operator     = flag.String("operator", "operator", "ledger account acting as competition operator")
		bond         = flag.String("bond", "100", "required submitter bond")
		compDur      = flag.Duration("comp-dur", protocol.DefaultCompDuration, "submission window duration")
		testDur      = flag.Duration("test-dur", protocol.DefaultTestDuration, "test window duration")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[lode-verifyd] ", log.LstdFlags)

	requiredBond, err := decimal.NewFromString(*bond)
	if err != nil {
		logger.Fatalf("invalid -bond %q: %v", *bond, err)
	}

	db, err := store.NewSQLiteDB(*dbPath)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate store: %v", err)
	}

	proto := protocol.New(protocol.Config{
		Ledger:       ledger.NewMemoryLedger(),
		Fetch:        db,
		Log:          db,
		Operator:     *operator,
		RequiredBond: requiredBond,
		CompDuration: *compDur,
		TestDuration: *testDur,
	})

	var tokens api.TokenSource
	if !*noAuth {
		tokens = auth.NewKeyringStore(*tokenService, *tokenFile)
	}

	server := api.NewServer(db, proto, *operator, tokens, logger)
	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Routes(),
	}

	go func() {
		logger.Printf("listening addr=%s db=%s", *addr, *dbPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
