package api

import (
	"context"

	"billybot/application"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

// Server is the REST front of the application layer.
type Server struct {
	app   *application.App
	fiber *fiber.App
}

// NewServer builds the fiber app and registers all routes.
func NewServer(app *application.App) *Server {
	f := fiber.New(fiber.Config{
		AppName:      "billybot",
		ErrorHandler: errorHandler,
	})

	f.Use(recover.New())
	f.Use(requestid.New())
	f.Use(requestLogger())

	s := &Server{
		app:   app,
		fiber: f,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.fiber.Get("/healthz", s.handleHealthz)

	servers := s.fiber.Group("/servers/:serverID")
	servers.Get("/leaderboard", s.handleLeaderboard)
	servers.Post("/challenge", s.handleStartChallenge)
	servers.Post("/challenge/resolve", s.handleResolveChallenge)
	servers.Post("/lottery/draw", s.handleDrawLottery)

	accounts := servers.Group("/accounts/:accountID")
	accounts.Get("/", s.handleGetAccount)
	accounts.Get("/history", s.handleBalanceHistory)
	accounts.Post("/", s.handleGetOrCreateAccount)
	accounts.Post("/transfer", s.handleTransfer)
	accounts.Post("/allowance", s.handleClaimAllowance)
	accounts.Post("/blackjack", s.handleStartBlackjack)
	accounts.Post("/blackjack/hit", s.handleHitBlackjack)
	accounts.Post("/blackjack/stand", s.handleStandBlackjack)
	accounts.Post("/dealornodeal/open", s.handleOpenDealCase)
	accounts.Post("/dealornodeal/respond", s.handleRespondDeal)
	accounts.Post("/roulette", s.handleSpinRoulette)
	accounts.Post("/challenge/bet", s.handlePlaceChallengeBet)
}

// Listen starts serving on addr and blocks until shutdown.
func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("Starting API server")
	return s.fiber.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.fiber.ShutdownWithContext(ctx)
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		log.WithFields(log.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"request_id": c.Locals("requestid"),
		}).Debug("Request handled")
		return err
	}
}
