package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/tallyup/tallyup/internal/config"
	"github.com/tallyup/tallyup/internal/database"
	"github.com/tallyup/tallyup/internal/group"
	"github.com/tallyup/tallyup/internal/settlement"
	"github.com/tallyup/tallyup/internal/transaction"
	"github.com/tallyup/tallyup/internal/transaction/split"
	"github.com/tallyup/tallyup/internal/user"
	"github.com/tallyup/tallyup/pkg/logging"
	mw "github.com/tallyup/tallyup/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	logging.Setup()
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to database")

	// Split strategy factory
	splitFactory := split.NewStrategyFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Transaction feature, defaulting omitted currencies from the group or payer
	groupRepo := group.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	transactionService := transaction.NewService(transactionRepo, userService, groupRepo, splitFactory)
	transactionHandler := transaction.NewHandler(transactionService)

	// Group feature, computing balances from the transaction history
	groupService := group.NewService(groupRepo, transactionService)
	groupHandler := group.NewHandler(groupService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db)
	settlementService := settlement.NewService(settlementRepo, transactionService, userService)
	settlementHandler := settlement.NewHandler(settlementService)

	jwtManager := mw.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.DevAuth {
			slog.Warn("Dev auth enabled, requests authenticate via X-Test-User-ID")
			r.Use(mw.TestUserMiddleware)
		} else {
			r.Use(mw.Auth(jwtManager))
		}

		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/transactions", transactionHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
	})

	slog.Info("Server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
