// Package http provides HTTP handlers for order intake, tracking and cancellation.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/httputil"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	"github.com/allisson/slimtrack/internal/order/http/dto"
	orderUseCase "github.com/allisson/slimtrack/internal/order/usecase"
	customValidation "github.com/allisson/slimtrack/internal/validation"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderUseCase orderUseCase.OrderUseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderUseCase orderUseCase.OrderUseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

// CreateHandler accepts a new order.
// POST /api/orders - Returns 201 Created with the Received order.
func (h *OrderHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.Create(c.Request.Context(), req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrderToResponse(order))
}

// GetHandler returns one order.
// GET /api/orders/:id
func (h *OrderHandler) GetHandler(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orderUseCase.Get(c.Request.Context(), orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// ListEventsHandler returns the audit trail of an order, oldest first.
// GET /api/orders/:id/events
func (h *OrderHandler) ListEventsHandler(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	events, err := h.orderUseCase.ListEvents(c.Request.Context(), orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToResponse(events))
}

// ListHandler returns a page of orders, newest first.
// GET /api/orders?page=1&pageSize=10&status=3
func (h *OrderHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := orderDomain.ListFilter{Offset: page.Offset(), Limit: page.Size}

	if raw := c.Query("status"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr == nil {
			convErr = customValidation.OrderStatus.Validate(n)
		}
		if convErr != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid status parameter: %w", convErr), h.logger)
			return
		}
		status := orderDomain.Status(n)
		filter.Status = &status
	}

	orders, total, err := h.orderUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewPageResponse(page, total, dto.MapOrdersToResponse(orders)))
}

// CancelHandler cancels a non-terminal order.
// POST /api/orders/:id/cancel - Body {"reason": "..."} is optional.
// Returns 409 Conflict when the order already reached Delivered or Cancelled.
func (h *OrderHandler) CancelHandler(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.Cancel(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

func (h *OrderHandler) parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid order id: %w", err), h.logger)
		return uuid.Nil, false
	}
	return orderID, true
}
