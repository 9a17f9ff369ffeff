package handlers

import (
	"net/http"

	"MediLedger/middlewares"
	"MediLedger/models"
	"MediLedger/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	service *services.AppointmentService
	logger  *zap.Logger
}

func NewAppointmentHandler(service *services.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, logger: logger}
}

func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	appointments, err := h.service.LoadAppointments(c.Request.Context(), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	appointment, err := h.service.FindAppointment(c.Request.Context(), c.Param("appointment_id"), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// CreateAppointment books an appointment directly on behalf of a doctor.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var form models.BookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	actor, _ := middlewares.IdentityFrom(c)

	outcome, err := h.service.BookAppointment(c.Request.Context(), actor, form)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	if err := h.service.DeleteAppointment(c.Request.Context(), c.Param("appointment_id"), actor); err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAllRequests lists a patient's own requests, or a doctor's inbox.
func (h *AppointmentHandler) GetAllRequests(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	requests, err := h.service.LoadRequests(c.Request.Context(), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *AppointmentHandler) CreateRequest(c *gin.Context) {
	var form models.RequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	actor, _ := middlewares.IdentityFrom(c)

	request, err := h.service.SubmitRequest(c.Request.Context(), actor, form)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *AppointmentHandler) ApproveRequest(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	outcome, err := h.service.ApproveRequest(c.Request.Context(), c.Param("request_id"), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *AppointmentHandler) RejectRequest(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	outcome, err := h.service.RejectRequest(c.Request.Context(), c.Param("request_id"), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *AppointmentHandler) DeleteRequest(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	if err := h.service.DeleteRequest(c.Request.Context(), c.Param("request_id"), actor); err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
