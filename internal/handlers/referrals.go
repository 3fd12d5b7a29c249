package handlers

import (
	"github.com/gin-gonic/gin"

	"referral-app-server/internal/middleware"
	"referral-app-server/internal/models"
	"referral-app-server/internal/services"
	"referral-app-server/internal/utils"
)

// ReferralHandler handles referral lifecycle requests.
type ReferralHandler struct {
	Referrals *services.ReferralService
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{Referrals: referrals}
}

// CreateReferralRequest represents the request body for issuing a referral.
type CreateReferralRequest struct {
	PatientID  string `json:"patientId" binding:"required,uuid"`
	HospitalID string `json:"hospitalId" binding:"required,uuid"`
	Specialty  string `json:"specialty" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	Notes      string `json:"notes"`
	// DoctorID names the referring doctor when an admin/staff user issues
	// the referral on a doctor's behalf; doctors always refer as themselves.
	DoctorID string `json:"doctorId"`
}

// CreateReferral handles issuing a new referral.
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateReferralRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	referral, err := h.Referrals.Create(c.Request.Context(), actor, req.DoctorID, services.CreateReferralInput{
		PatientID:  req.PatientID,
		HospitalID: req.HospitalID,
		Specialty:  req.Specialty,
		Reason:     req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Referral created successfully", referral)
}

// GetReferrals handles fetching referrals visible to the caller.
func (h *ReferralHandler) GetReferrals(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	referrals, err := h.Referrals.List(c.Request.Context(), actor, services.ReferralFilter{
		PatientID: c.Query("patientId"),
		Status:    models.ReferralStatus(c.Query("status")),
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Referrals fetched successfully", referrals)
}

// GetReferralByID handles fetching a single referral.
func (h *ReferralHandler) GetReferralByID(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	referral, err := h.Referrals.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Referral fetched successfully", referral)
}

// UpdateReferralStatusRequest represents the request body for a referral
// status change.
type UpdateReferralStatusRequest struct {
	Status models.ReferralStatus `json:"status" binding:"required"`
}

// UpdateReferralStatus handles moving a referral through its lifecycle.
func (h *ReferralHandler) UpdateReferralStatus(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateReferralStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	referral, err := h.Referrals.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Referral status updated successfully", referral)
}

// UpdateReferralNotesRequest represents the request body for updating
// referral notes.
type UpdateReferralNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// UpdateReferralNotes handles replacing a referral's notes.
func (h *ReferralHandler) UpdateReferralNotes(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateReferralNotesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	referral, err := h.Referrals.UpdateNotes(c.Request.Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Referral notes updated successfully", referral)
}
