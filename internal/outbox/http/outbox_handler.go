// Package http exposes read-only inspection of the outbox table.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/slimtrack/internal/httputil"
	"github.com/allisson/slimtrack/internal/outbox/domain"
	outboxUseCase "github.com/allisson/slimtrack/internal/outbox/usecase"
)

// OutboxMessageResponse represents an outbox row in API responses.
type OutboxMessageResponse struct {
	ID           string     `json:"id"`
	EventType    string     `json:"eventType"`
	Payload      string     `json:"payload"`
	Published    bool       `json:"published"`
	CreatedAt    time.Time  `json:"createdAt"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	RetryCount   int        `json:"retryCount"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

// MapOutboxMessagesToResponse converts outbox rows to API responses.
func MapOutboxMessagesToResponse(messages []*domain.OutboxMessage) []OutboxMessageResponse {
	responses := make([]OutboxMessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, OutboxMessageResponse{
			ID:           msg.ID.String(),
			EventType:    msg.EventType,
			Payload:      msg.Payload,
			Published:    msg.Published,
			CreatedAt:    msg.CreatedAt,
			PublishedAt:  msg.PublishedAt,
			RetryCount:   msg.RetryCount,
			ErrorMessage: msg.ErrorMessage,
		})
	}
	return responses
}

// OutboxHandler handles HTTP requests for outbox inspection.
type OutboxHandler struct {
	outboxUseCase outboxUseCase.OutboxUseCase
	logger        *slog.Logger
}

// NewOutboxHandler creates a new outbox handler.
func NewOutboxHandler(outboxUseCase outboxUseCase.OutboxUseCase, logger *slog.Logger) *OutboxHandler {
	return &OutboxHandler{
		outboxUseCase: outboxUseCase,
		logger:        logger,
	}
}

// ListHandler returns a page of outbox rows, oldest first.
// GET /api/outbox?published=false&page=1&pageSize=10
func (h *OutboxHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.ListFilter{Offset: page.Offset(), Limit: page.Size}
	if raw := c.Query("published"); raw != "" {
		published, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid published parameter: must be true or false"), h.logger)
			return
		}
		filter.Published = &published
	}

	messages, total, err := h.outboxUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewPageResponse(page, total, MapOutboxMessagesToResponse(messages)))
}
