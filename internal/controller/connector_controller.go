package controller

import (
	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/pkg/serverutils"
	"whatsapp-tracking-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConnectorController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Revoke(ctx *fiber.Ctx) error
}

type connectorController struct {
	intakeService service.IIntakeService
}

func NewConnectorController(intakeService service.IIntakeService) IConnectorController {
	return &connectorController{
		intakeService: intakeService,
	}
}

func (c *connectorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/connector/v1")
	h.Post("messages", c.Ingest)
	h.Post("revocations", c.Revoke)
}

// Ingest always answers 202 on a well-formed request. Whether the message
// was a duplicate, noise, or filtered is the pipeline's business; the
// connector stays dumb.
func (c *connectorController) Ingest(ctx *fiber.Ctx) error {
	var req dto.InboundMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid message body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.intakeService.HandleInbound(&req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Message accepted", dto.AcceptedResponse{Accepted: true}))
}

func (c *connectorController) Revoke(ctx *fiber.Ctx) error {
	var req dto.RevokeMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid revocation body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.intakeService.HandleRevoke(&req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Revocation accepted", dto.AcceptedResponse{Accepted: true}))
}
