package controller

import (
	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/pkg/serverutils"
	"whatsapp-tracking-be/internal/repository/contract"
	internalws "whatsapp-tracking-be/internal/websocket"
	"whatsapp-tracking-be/pkg/correlate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	ActiveSessions(ctx *fiber.Ctx) error
	RecentResults(ctx *fiber.Ctx) error
	ResultBySession(ctx *fiber.Ctx) error
	DeadLetters(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type pipelineController struct {
	correlator     *correlate.Correlator
	resultRepo     contract.ProcessingResultRepository // nil when persistence is disabled
	deadLetterRepo contract.DeadLetterRepository       // nil when persistence is disabled
	hub            *internalws.Hub
}

func NewPipelineController(
	correlator *correlate.Correlator,
	resultRepo contract.ProcessingResultRepository,
	deadLetterRepo contract.DeadLetterRepository,
	hub *internalws.Hub,
) IPipelineController {
	return &pipelineController{
		correlator:     correlator,
		resultRepo:     resultRepo,
		deadLetterRepo: deadLetterRepo,
		hub:            hub,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Get("sessions/active", c.ActiveSessions)
	h.Get("results/recent", c.RecentResults)
	h.Get("results/:sessionId", c.ResultBySession)
	h.Get("dead-letters", c.DeadLetters)
	h.Get("stats", c.Stats)

	ws := r.Group("/pipeline/ws")
	ws.Use(func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("", websocket.New(func(conn *websocket.Conn) {
		internalws.ServeWs(c.hub, conn)
	}))
}

func (c *pipelineController) ActiveSessions(ctx *fiber.Ctx) error {
	sessions := c.correlator.ActiveSessions()
	return ctx.JSON(serverutils.SuccessResponse("Active sessions", dto.ActiveSessionsResponse{
		Count:    len(sessions),
		Sessions: sessions,
	}))
}

// RecentResults serves from the hub's in-memory replay buffer first; with
// an explicit source=db (and persistence on) it reads the table instead.
func (c *pipelineController) RecentResults(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if ctx.Query("source") == "db" && c.resultRepo != nil {
		results, err := c.resultRepo.FindRecent(ctx.Context(), limit)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Recent results", toResultResponses(results)))
	}

	return ctx.JSON(serverutils.SuccessResponse("Recent results", c.hub.Recent(limit)))
}

func (c *pipelineController) ResultBySession(ctx *fiber.Ctx) error {
	if c.resultRepo == nil {
		return serverutils.NewApiError(fiber.StatusServiceUnavailable, "persistence is disabled")
	}

	sessionId := ctx.Params("sessionId")
	result, err := c.resultRepo.FindBySessionId(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	if result == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "no result for session "+sessionId)
	}

	return ctx.JSON(serverutils.SuccessResponse("Processing result", toResultResponse(result)))
}

func (c *pipelineController) DeadLetters(ctx *fiber.Ctx) error {
	if c.deadLetterRepo == nil {
		return serverutils.NewApiError(fiber.StatusServiceUnavailable, "persistence is disabled")
	}

	limit := ctx.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	deadLetters, err := c.deadLetterRepo.FindRecent(ctx.Context(), limit)
	if err != nil {
		return err
	}

	responses := make([]dto.DeadLetterResponse, 0, len(deadLetters))
	for _, dl := range deadLetters {
		responses = append(responses, dto.DeadLetterResponse{
			SessionId:       dl.SessionId,
			OriginalPayload: string(dl.OriginalPayload),
			ErrorMessage:    dl.ErrorMessage,
			Timestamp:       dl.Timestamp,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Dead letters", responses))
}

func (c *pipelineController) Stats(ctx *fiber.Ctx) error {
	stats := dto.PipelineStatsResponse{
		ActiveSessions: c.correlator.ActiveCount(),
		PersistenceOn:  c.resultRepo != nil,
	}

	if c.resultRepo != nil {
		if n, err := c.resultRepo.CountByStatus(ctx.Context(), entity.StatusProcessed); err == nil {
			stats.Processed = n
		}
		if n, err := c.resultRepo.CountByStatus(ctx.Context(), entity.StatusLowConfidence); err == nil {
			stats.LowConfidence = n
		}
		if n, err := c.resultRepo.CountByStatus(ctx.Context(), entity.StatusFailed); err == nil {
			stats.Failed = n
		}
	}
	if c.deadLetterRepo != nil {
		if n, err := c.deadLetterRepo.Count(ctx.Context()); err == nil {
			stats.DeadLetters = n
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Pipeline stats", stats))
}

func toResultResponse(r *entity.ProcessingResult) dto.ProcessingResultResponse {
	return dto.ProcessingResultResponse{
		SessionId:    r.SessionId,
		SenderNumber: r.SenderNumber,
		PushName:     r.PushName,
		Extracted:    r.Extracted,
		RawMessages:  r.RawMessages,
		CombinedText: r.CombinedText,
		ProcessedAt:  r.ProcessedAt,
		Status:       r.Status,
		Error:        r.Error,
	}
}

func toResultResponses(results []*entity.ProcessingResult) []dto.ProcessingResultResponse {
	responses := make([]dto.ProcessingResultResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, toResultResponse(r))
	}
	return responses
}
