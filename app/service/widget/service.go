package widget

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"leadcapture/app/client/gateway"
	"leadcapture/app/config"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

var _ do.Shutdownable = (*Service)(nil)

type gatewayClient interface {
	SendChatMessage(ctx context.Context, message string, history []gateway.ChatMessage) gateway.ChatResponse
	GetLeads(ctx context.Context) []json.RawMessage
	GetLead(ctx context.Context, id int64) (json.RawMessage, bool)
	Connectivity(ctx context.Context) []gateway.BackendStatus
	Primary() gateway.Endpoint
	Secondary() gateway.Endpoint
}

// Service is the HTTP API the chat widget and the dashboard call.
type Service struct {
	cfg      *config.Config
	client   gatewayClient
	validate *validator.Validate
	app      *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	return newService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*gateway.Client](di),
	), nil
}

func newService(cfg *config.Config, client gatewayClient) *Service {
	s := &Service{
		cfg:      cfg,
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := app.Group("/api")
	api.Post("/chat", s.handleChat)
	api.Get("/leads", s.handleLeads)
	api.Get("/leads/:id", s.handleLead)
	api.Get("/health", s.handleHealth)

	s.app = app

	return s
}

// Run serves until ctx is done or the listener fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Widget API listening", "address", s.cfg.Server.Listen)
		return s.app.Listen(s.cfg.Server.Listen)
	})

	g.Go(func() error {
		<-ctx.Done()
		return s.app.Shutdown()
	})

	return g.Wait()
}

func (s *Service) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Service) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp := s.client.SendChatMessage(c.UserContext(), req.Message, req.history())

	return c.JSON(resp)
}

func (s *Service) handleLeads(c *fiber.Ctx) error {
	return c.JSON(s.client.GetLeads(c.UserContext()))
}

func (s *Service) handleLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lead id")
	}

	lead, ok := s.client.GetLead(c.UserContext(), int64(id))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "lead not found")
	}

	return c.JSON(lead)
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Primary:   s.client.Primary(),
		Secondary: s.client.Secondary(),
		Backends:  s.client.Connectivity(c.UserContext()),
	})
}

func (s *Service) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("Widget API error",
			"path", c.Path(),
			"error", err)
	}

	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
