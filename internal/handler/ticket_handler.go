package handler

import (
	"errors"
	"net/http"

	"railway-reservation/internal/model"
	"railway-reservation/internal/service"
	apperrors "railway-reservation/pkg/app_errors"
	"railway-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.ReservationService
}

func NewTicketHandler(service service.ReservationService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/tickets")
	{
		router.POST("book", h.Book)
		router.POST("cancel/:pnr", h.Cancel)
		router.GET("booked", h.ListBooked)
		router.GET("available", h.Availability)
		router.GET("berths", h.Berths)
		router.GET(":pnr", h.GetByPNR)
	}
}

// PNRUri 路徑上的 PNR
type PNRUri struct {
	PNR string `uri:"pnr" binding:"required,len=10,alphanum"`
}

func (h *TicketHandler) Book(c *gin.Context) {
	var req model.BookingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	// binding 標籤無法表達欄位之間的關係，例如帶幼童旗標必須附上幼童
	if err := req.Validate(); err != nil {
		h.handleError(c, err, "Book")
		return
	}

	ticket, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err, "Book")
		return
	}

	respondSuccess(c, http.StatusCreated, bookedMessage(ticket.Status), ticket)
}

func (h *TicketHandler) Cancel(c *gin.Context) {
	var uri PNRUri
	if err := BindUri(c, &uri); err != nil {
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), uri.PNR)
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}

	respondSuccess(c, http.StatusOK, "Ticket cancelled successfully", result)
}

func (h *TicketHandler) GetByPNR(c *gin.Context) {
	var uri PNRUri
	if err := BindUri(c, &uri); err != nil {
		return
	}

	ticket, err := h.service.GetByPNR(c.Request.Context(), uri.PNR)
	if err != nil {
		h.handleError(c, err, "GetByPNR")
		return
	}

	respondSuccess(c, http.StatusOK, "Ticket retrieved successfully", ticket)
}

func (h *TicketHandler) ListBooked(c *gin.Context) {
	listing, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "ListBooked")
		return
	}

	respondSuccess(c, http.StatusOK, "Booked tickets retrieved successfully", listing)
}

func (h *TicketHandler) Availability(c *gin.Context) {
	availability, err := h.service.Availability(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Availability")
		return
	}

	respondSuccess(c, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *TicketHandler) Berths(c *gin.Context) {
	berths, err := h.service.Berths(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Berths")
		return
	}

	respondSuccess(c, http.StatusOK, "Berths retrieved successfully", berths)
}

func bookedMessage(status model.TicketStatus) string {
	switch status {
	case model.TicketStatusRAC:
		return "Ticket booked under RAC"
	case model.TicketStatusWaitingList:
		return "Ticket added to waiting list"
	}
	return "Ticket booked successfully"
}

func (h *TicketHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNoTicketsAvailable):
		log.Warn("No tickets available")
		respondError(c, http.StatusBadRequest, "No tickets available", nil)
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		respondError(c, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		respondError(c, http.StatusNotFound, "Ticket not found", nil)
	default:
		log.Error("Unexpected error")
		respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
