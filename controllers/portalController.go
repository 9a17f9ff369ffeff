package controllers

import (
	"MediLedger/handlers"
	"MediLedger/middlewares"
	"MediLedger/models"

	"github.com/gin-gonic/gin"
)

// SetupPortalRoutes registers the appointment and chat routes. Every route
// needs a session; the role-specific ones check the role up front.
func SetupPortalRoutes(router *gin.Engine, tokenAuth gin.HandlerFunc, appointmentHandler *handlers.AppointmentHandler, chatHandler *handlers.ChatHandler) {
	doctorOnly := middlewares.RoleAuthMiddleware(models.RoleDoctor)
	patientOnly := middlewares.RoleAuthMiddleware(models.RolePatient)

	portal := router.Group("/", tokenAuth)
	{
		portal.GET("/appointments", appointmentHandler.GetAllAppointments)
		portal.GET("/appointments/:appointment_id", appointmentHandler.GetAppointmentByID)
		portal.POST("/appointments", doctorOnly, appointmentHandler.CreateAppointment)
		portal.DELETE("/appointments/:appointment_id", appointmentHandler.DeleteAppointment)

		portal.GET("/appointment-requests", appointmentHandler.GetAllRequests)
		portal.POST("/appointment-requests", patientOnly, appointmentHandler.CreateRequest)
		portal.POST("/appointment-requests/:request_id/approve", doctorOnly, appointmentHandler.ApproveRequest)
		portal.POST("/appointment-requests/:request_id/reject", doctorOnly, appointmentHandler.RejectRequest)
		portal.DELETE("/appointment-requests/:request_id", appointmentHandler.DeleteRequest)

		portal.GET("/chats", chatHandler.GetConversations)
		portal.GET("/chats/:counterpart_id/messages", chatHandler.GetMessages)
		portal.POST("/chats/:counterpart_id/messages", chatHandler.SendMessage)
		portal.POST("/chats/:counterpart_id/snapshots", chatHandler.ShareSnapshot)
	}
}
