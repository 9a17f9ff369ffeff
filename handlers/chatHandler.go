package handlers

import (
	"net/http"

	"MediLedger/middlewares"
	"MediLedger/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat         *services.ChatService
	appointments *services.AppointmentService
	logger       *zap.Logger
}

func NewChatHandler(chat *services.ChatService, appointments *services.AppointmentService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, appointments: appointments, logger: logger}
}

// GetConversations lists one conversation per counterpart the caller has
// appointments with.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	conversations, err := h.chat.ListConversations(c.Request.Context(), actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// GetMessages returns the decoded history of the conversation with the
// counterpart in the path.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	actor, _ := middlewares.IdentityFrom(c)
	conv, err := h.chat.OpenWith(actor, c.Param("counterpart_id"))
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}

	history, err := h.chat.LoadHistory(c.Request.Context(), conv.ID)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	actor, _ := middlewares.IdentityFrom(c)
	conv, err := h.chat.OpenWith(actor, c.Param("counterpart_id"))
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), conv.ID, actor, body.Message)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ShareSnapshot posts the details of one of the pair's appointments to the
// conversation.
func (h *ChatHandler) ShareSnapshot(c *gin.Context) {
	var body struct {
		AppointmentID string `json:"appointment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	actor, _ := middlewares.IdentityFrom(c)
	conv, err := h.chat.OpenWith(actor, c.Param("counterpart_id"))
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}

	appointment, err := h.appointments.FindAppointment(c.Request.Context(), body.AppointmentID, actor)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	msg, err := h.chat.ShareAppointmentSnapshot(c.Request.Context(), conv.ID, actor, *appointment)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
