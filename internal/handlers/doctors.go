package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-app-server/internal/middleware"
	"referral-app-server/internal/models"
	"referral-app-server/internal/services"
	"referral-app-server/internal/utils"
)

// DoctorHandler handles doctor directory and affiliation requests.
type DoctorHandler struct {
	DB      *gorm.DB
	Doctors *services.DoctorService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, doctors *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{DB: db, Doctors: doctors}
}

// CreateDoctorRequest represents the request body for creating a doctor record.
type CreateDoctorRequest struct {
	UserID    string `json:"userId" binding:"required,uuid"`
	Specialty string `json:"specialty" binding:"required"`
}

// CreateDoctor handles creating a doctor record for an existing user (admin).
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("id = ? AND role = ?", req.UserID, models.RoleDoctor).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var existing models.Doctor
	if err := h.DB.Where("user_id = ?", req.UserID).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A doctor record already exists for this user")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	doctor := models.Doctor{
		UserID:    req.UserID,
		Specialty: req.Specialty,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	utils.Created(c, "Doctor created successfully", doctor)
}

// GetDoctors handles fetching all doctors with their affiliations.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	var doctors []models.Doctor
	query := h.DB.Preload("User").Preload("Affiliations").Preload("Affiliations.Hospital")
	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID handles fetching a single doctor with affiliations.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.Doctor
	err := h.DB.Preload("User").Preload("Affiliations").Preload("Affiliations.Hospital").
		First(&doctor, "id = ?", doctorID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// AddAffiliationRequest represents the request body for adding a hospital affiliation.
type AddAffiliationRequest struct {
	HospitalID string `json:"hospitalId" binding:"required,uuid"`
	Department string `json:"department"`
}

// AddAffiliation handles affiliating a doctor with a hospital.
func (h *DoctorHandler) AddAffiliation(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req AddAffiliationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Doctors.AddAffiliation(c.Request.Context(), actor, c.Param("id"), req.HospitalID, req.Department)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Affiliation added successfully", doctor)
}

// RemoveAffiliation handles removing a doctor's hospital affiliation.
func (h *DoctorHandler) RemoveAffiliation(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	doctor, err := h.Doctors.RemoveAffiliation(c.Request.Context(), actor, c.Param("id"), c.Param("hospitalId"))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Affiliation removed successfully", doctor)
}
