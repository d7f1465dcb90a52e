package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/pairplay/pairplay/internal/api/http"
	"github.com/pairplay/pairplay/internal/application/auth"
	"github.com/pairplay/pairplay/internal/application/card"
	"github.com/pairplay/pairplay/internal/application/negotiation"
	"github.com/pairplay/pairplay/internal/application/period"
	"github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/application/user"
	"github.com/pairplay/pairplay/internal/config"
	"github.com/pairplay/pairplay/internal/infrastructure/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	db := postgres.NewDB(pool)

	// repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	periodRepo := postgres.NewPeriodRepository(db)
	cardRepo := postgres.NewCardRepository(db)
	proposalRepo := postgres.NewProposalRepository(db)
	creditRepo := postgres.NewCreditRepository(db)

	// services
	settlementSvc := settlement.NewService(creditRepo, db, logger)
	negotiationSvc := negotiation.NewService(proposalRepo, cardRepo, settlementSvc, db, logger)
	periodSvc := period.NewService(periodRepo, settlementSvc, db, logger)
	cardSvc := card.NewService(cardRepo, logger)
	userSvc := user.NewService(userRepo, settlementSvc, db, cfg.InitialGrantCredits, logger)
	authSvc := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)

	// API server
	apiServer := httpapi.NewServer(authSvc, userSvc, negotiationSvc, settlementSvc, periodSvc, cardSvc, cfg.SessionCookieName, cfg.SessionCookieSecure, cfg.CurrencyName)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background session cleanup
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := authSvc.PurgeExpired(context.Background()); err == nil && n > 0 {
				logger.Info().Int("sessions", n).Msg("expired sessions purged")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
