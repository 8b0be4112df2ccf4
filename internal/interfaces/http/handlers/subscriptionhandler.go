// Package handlers exposes the billing engine's admin HTTP surface.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"subcycle/internal/application/subscription/usecases"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/infrastructure/repository"
	apperrors "subcycle/internal/shared/errors"
	"subcycle/internal/shared/logger"
)

// SubscriptionHandler handles subscription lifecycle operations
type SubscriptionHandler struct {
	createUseCase        *usecases.CreateSubscriptionUseCase
	getUseCase           *usecases.GetSubscriptionUseCase
	updateStatusUseCase  *usecases.UpdateStatusUseCase
	updateDatesUseCase   *usecases.UpdateDatesUseCase
	calculateDateUseCase *usecases.CalculateDateUseCase
	processRenewal       *usecases.ProcessRenewalUseCase
	paymentComplete      *usecases.PaymentCompleteUseCase
	paymentFailed        *usecases.PaymentFailedUseCase
	notes                *repository.NoteRecorderImpl
	logger               logger.Interface
}

func NewSubscriptionHandler(
	createUC *usecases.CreateSubscriptionUseCase,
	getUC *usecases.GetSubscriptionUseCase,
	updateStatusUC *usecases.UpdateStatusUseCase,
	updateDatesUC *usecases.UpdateDatesUseCase,
	calculateDateUC *usecases.CalculateDateUseCase,
	processRenewalUC *usecases.ProcessRenewalUseCase,
	paymentCompleteUC *usecases.PaymentCompleteUseCase,
	paymentFailedUC *usecases.PaymentFailedUseCase,
	notes *repository.NoteRecorderImpl,
	log logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createUseCase:        createUC,
		getUseCase:           getUC,
		updateStatusUseCase:  updateStatusUC,
		updateDatesUseCase:   updateDatesUC,
		calculateDateUseCase: calculateDateUC,
		processRenewal:       processRenewalUC,
		paymentComplete:      paymentCompleteUC,
		paymentFailed:        paymentFailedUC,
		notes:                notes,
		logger:               log,
	}
}

// CreateSubscriptionRequest represents the request to create a subscription
type CreateSubscriptionRequest struct {
	BillingPeriod   string `json:"billing_period" binding:"required,billing_period"`
	BillingInterval int    `json:"billing_interval" binding:"required,min=1"`
	Start           string `json:"start"`
	TrialEnd        string `json:"trial_end"`
	End             string `json:"end"`
	TotalCents      int64  `json:"total_cents" binding:"min=0"`
	ParentOrderID   uint   `json:"parent_order_id"`
	ManualRenewal   bool   `json:"manual_renewal"`
	Synced          bool   `json:"synced"`
}

// UpdateStatusRequest represents the request to change subscription status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateDatesRequest represents a batch schedule-date update
type UpdateDatesRequest struct {
	Dates map[string]string `json:"dates" binding:"required"`
}

// PaymentRequest represents a gateway payment notification
type PaymentRequest struct {
	OrderID       uint   `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

// TriggerRenewalRequest optionally narrows a manual renewal trigger
type TriggerRenewalRequest struct {
	RequiredStatus string `json:"required_status"`
	Note           string `json:"note"`
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create subscription", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateSubscriptionCommand{
		BillingPeriod:   req.BillingPeriod,
		BillingInterval: req.BillingInterval,
		Start:           req.Start,
		TrialEnd:        req.TrialEnd,
		End:             req.End,
		TotalCents:      req.TotalCents,
		ParentOrderID:   req.ParentOrderID,
		ManualRenewal:   req.ManualRenewal,
		Synced:          req.Synced,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{SubscriptionID: id})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := vo.ParseStatus(req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.updateStatusUseCase.Execute(c.Request.Context(), usecases.UpdateStatusCommand{
		SubscriptionID: id,
		Status:         req.Status,
		Note:           req.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *SubscriptionHandler) UpdateDates(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	var req UpdateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for rawType := range req.Dates {
		if _, err := vo.ParseDateType(rawType); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err := h.updateDatesUseCase.Execute(c.Request.Context(), usecases.UpdateDatesCommand{
		SubscriptionID: id,
		Dates:          req.Dates,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *SubscriptionHandler) CalculateDate(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	dateType, err := vo.ParseDateType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.calculateDateUseCase.Execute(c.Request.Context(), usecases.CalculateDateCommand{
		SubscriptionID: id,
		DateType:       dateType.String(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TriggerRenewal runs one renewal cycle immediately, outside the scheduler.
func (h *SubscriptionHandler) TriggerRenewal(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	var req TriggerRenewalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.RequiredStatus != "" {
			if _, err := vo.ParseStatus(req.RequiredStatus); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	err := h.processRenewal.Execute(c.Request.Context(), usecases.ProcessRenewalCommand{
		SubscriptionID: id,
		RequiredStatus: req.RequiredStatus,
		Note:           req.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *SubscriptionHandler) PaymentComplete(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.paymentComplete.Execute(c.Request.Context(), usecases.PaymentCompleteCommand{
		SubscriptionID: id,
		OrderID:        req.OrderID,
		TransactionID:  req.TransactionID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *SubscriptionHandler) PaymentFailed(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.paymentFailed.Execute(c.Request.Context(), usecases.PaymentFailedCommand{
		SubscriptionID: id,
		OrderID:        req.OrderID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *SubscriptionHandler) ListNotes(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	notes, err := h.notes.ListNotes(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "notes": notes})
}

func (h *SubscriptionHandler) subscriptionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription id"})
		return 0, false
	}
	return uint(id), true
}

func (h *SubscriptionHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, subscription.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, subscription.ErrInvalidDateOrdering),
		errors.Is(err, subscription.ErrProtectedDate),
		errors.Is(err, subscription.ErrInvalidBillingPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, subscription.ErrTransientProcessing),
		errors.Is(err, subscription.ErrRenewalOrderCreation):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case apperrors.IsAppError(err):
		appErr := apperrors.GetAppError(err)
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	default:
		h.logger.Errorw("unhandled error in subscription handler", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
