package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/kmehta/divvy/internal/auth"
	"github.com/kmehta/divvy/internal/config"
	divvyhttp "github.com/kmehta/divvy/internal/http"
	"github.com/kmehta/divvy/internal/http/balance"
	"github.com/kmehta/divvy/internal/http/expense"
	"github.com/kmehta/divvy/internal/http/group"
	"github.com/kmehta/divvy/internal/http/settlement"
	"github.com/kmehta/divvy/internal/http/user"
	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/service"
	"github.com/kmehta/divvy/internal/storage/sqlite"
	"github.com/kmehta/divvy/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DB.Path)

	// Rebuild the in-memory ledger from the persisted balance rows.
	led := ledger.New()
	entries, err := store.ListBalances(context.Background())
	if err != nil {
		slog.Error("Failed to load balances", "error", err)
		os.Exit(1)
	}
	ledgerEntries := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		ledgerEntries = append(ledgerEntries, ledger.Entry{
			UserID:         e.UserID,
			CounterpartyID: e.CounterpartyID,
			Amount:         e.Amount,
		})
	}
	if err := led.Load(ledgerEntries); err != nil {
		slog.Error("Failed to rebuild ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger rebuilt", "pairs", len(ledgerEntries))

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	handler := divvyhttp.New(
		jwtManager,
		user.NewHandler(service.NewUserService(store, jwtManager)),
		group.NewHandler(service.NewGroupService(store)),
		expense.NewHandler(service.NewExpenseService(store, led)),
		settlement.NewHandler(service.NewSettlementService(store, led)),
		balance.NewHandler(service.NewBalanceService(store, led)),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("Server starting", "app", cfg.App.Name, "address", addr)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
