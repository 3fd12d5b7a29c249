package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-app-server/internal/models"
	"referral-app-server/internal/utils"
)

// PatientHandler handles patient record requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// CreatePatientRequest represents the request body for creating a patient record.
type CreatePatientRequest struct {
	FirstName   string     `json:"firstName" binding:"required"`
	LastName    string     `json:"lastName" binding:"required"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	PhoneNumber string     `json:"phoneNumber"`
	Address     string     `json:"address"`
	UserID      string     `json:"userId"`
}

// CreatePatient handles creating a new patient record (admin/staff).
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if req.UserID != "" {
		if err := h.DB.First(&models.User{}, "id = ?", req.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Linked user account not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		patient.UserID = &req.UserID
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// GetPatients handles fetching all patient records.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	var patients []models.Patient
	if err := h.DB.Order("created_at desc").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID handles fetching a single patient record.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a patient record.
type UpdatePatientRequest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	PhoneNumber string     `json:"phoneNumber"`
	Address     string     `json:"address"`
}

// UpdatePatient handles updating a patient record (admin/staff).
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patientID := c.Param("id")

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		patient.FirstName = req.FirstName
	}
	if req.LastName != "" {
		patient.LastName = req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.PhoneNumber != "" {
		patient.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		patient.Address = req.Address
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}
