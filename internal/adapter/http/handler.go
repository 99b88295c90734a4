package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tacticore/internal/app/dispatch"
	"tacticore/internal/app/replay"
	"tacticore/internal/app/status"
	"tacticore/internal/domain/decision"
)

const (
	requestIDHeader = "X-Request-ID"
	sessionIDHeader = "X-Session-ID"
)

type Decider interface {
	Decide(ctx context.Context, req dispatch.Request) dispatch.Response
}

type metricsSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Decider  Decider
	StatusUC status.UseCase
	ReplayUC replay.UseCase
	Metrics  metricsSnapshotProvider
	// NewRequestID defaults to a random UUID.
	NewRequestID func() string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	v1 := s.Group("/api/v1")
	v1.POST("/decide", h.decide)
	v1.GET("/health", h.health)
	v1.GET("/metrics", h.metrics)
	v1.GET("/decisions", h.decisions)
}

type decideRequest struct {
	GameState   decision.Snapshot `json:"game_state"`
	RequestID   string            `json:"request_id"`
	SessionID   string            `json:"session_id"`
	TimestampMs int64             `json:"timestamp_ms"`
}

func (h Handler) decide(c context.Context, ctx *app.RequestContext) {
	if h.Decider == nil {
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "not_configured", "decision engine not configured")
		return
	}
	var body decideRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	requestID := firstNonEmpty(body.RequestID, string(ctx.GetHeader(requestIDHeader)))
	if requestID == "" {
		requestID = h.newRequestID()
	}
	sessionID := firstNonEmpty(body.SessionID, string(ctx.GetHeader(sessionIDHeader)), body.GameState.Character.Name, dispatch.DefaultSession)

	resp := h.Decider.Decide(c, dispatch.Request{
		SessionID:   sessionID,
		RequestID:   requestID,
		TimestampMs: body.TimestampMs,
		Snapshot:    body.GameState,
	})
	ctx.Response.Header.Set(requestIDHeader, resp.RequestID)
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) health(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) metrics(_ context.Context, ctx *app.RequestContext) {
	if h.Metrics == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "metrics provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Metrics.SnapshotAny())
}

func (h Handler) decisions(c context.Context, ctx *app.RequestContext) {
	if h.ReplayUC.Journal == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "decision journal not configured")
		return
	}
	limit, err := optionalInt(string(ctx.Query("limit")))
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "limit must be an integer")
		return
	}
	decidedFrom, _ := strconv.ParseInt(string(ctx.Query("decided_from")), 10, 64)
	decidedTo, _ := strconv.ParseInt(string(ctx.Query("decided_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SessionID:   string(ctx.Query("session_id")),
		Limit:       limit,
		DecidedFrom: decidedFrom,
		DecidedTo:   decidedTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) newRequestID() string {
	if h.NewRequestID != nil {
		return h.NewRequestID()
	}
	return uuid.NewString()
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	default:
		log.Error().Err(err).Str("path", string(ctx.Path())).Msg("request failed")
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
