package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"referral-app-server/internal/middleware"
	"referral-app-server/internal/models"
	"referral-app-server/internal/services"
	"referral-app-server/internal/utils"
)

// AppointmentHandler handles appointment lifecycle and booking requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Bookings     *services.BookingService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, bookings *services.BookingService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Bookings: bookings}
}

// CreateAppointmentRequest represents the request body for a direct booking.
type CreateAppointmentRequest struct {
	PatientID       string    `json:"patientId" binding:"required,uuid"`
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason" binding:"required"`
	Notes           string    `json:"notes"`
}

// CreateAppointment handles creating an appointment without a referral.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.StartTime.Before(time.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	appointment, err := h.Appointments.Create(c.Request.Context(), actor, services.CreateAppointmentInput{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// BookFromReferralRequest represents the request body for booking an
// appointment that consumes a referral.
type BookFromReferralRequest struct {
	PatientID       string    `json:"patientId" binding:"required,uuid"`
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason" binding:"required"`
	ReferralID      string    `json:"referralId"`
}

// BookFromReferral handles booking an appointment from a referral. The
// referral is advanced to appointment_scheduled and back-linked to the
// new appointment in the same unit of work.
func (h *AppointmentHandler) BookFromReferral(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req BookFromReferralRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.StartTime.Before(time.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	result, err := h.Bookings.CreateAppointmentFromBooking(c.Request.Context(), actor, services.BookingInput{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		ReferralID:      req.ReferralID,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", result)
}

// GetAppointments handles fetching appointments visible to the caller.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	filter := services.AppointmentFilter{
		PatientID: c.Query("patientId"),
		Status:    models.AppointmentStatus(c.Query("status")),
	}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.BadRequest(c, "Invalid 'from' timestamp, expected RFC3339")
			return
		}
		filter.From = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			utils.BadRequest(c, "Invalid 'to' timestamp, expected RFC3339")
			return
		}
		filter.To = parsed
	}

	appointments, err := h.Appointments.List(c.Request.Context(), actor, filter)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Appointments.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating
// an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
	Notes  string                   `json:"notes"` // Optional notes for status change (e.g., cancellation reason)
}

// UpdateAppointmentStatus handles updating the status of an appointment.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	NewStartTime time.Time `json:"newStartTime" binding:"required"`
	Notes        string    `json:"notes"`
}

// RescheduleAppointment handles moving an appointment to a new time.
// Restricted to admin/staff by the access policy.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.Reschedule(c.Request.Context(), actor, c.Param("id"), req.NewStartTime, req.Notes)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}
