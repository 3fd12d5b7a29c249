package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-app-server/internal/models"
	"referral-app-server/internal/utils"
)

// HospitalHandler handles hospital directory requests.
type HospitalHandler struct {
	DB *gorm.DB
}

// NewHospitalHandler creates a new HospitalHandler.
func NewHospitalHandler(db *gorm.DB) *HospitalHandler {
	return &HospitalHandler{DB: db}
}

// CreateHospitalRequest represents the request body for creating a hospital.
type CreateHospitalRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PhoneNumber string `json:"phoneNumber"`
}

// CreateHospital handles creating a new hospital (admin/staff).
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hospital := models.Hospital{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.DB.Create(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to create hospital: "+err.Error())
		return
	}

	utils.Created(c, "Hospital created successfully", hospital)
}

// GetHospitals handles fetching all hospitals.
func (h *HospitalHandler) GetHospitals(c *gin.Context) {
	var hospitals []models.Hospital
	if err := h.DB.Order("name asc").Find(&hospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospitals: "+err.Error())
		return
	}
	utils.Success(c, "Hospitals fetched successfully", hospitals)
}

// GetHospitalByID handles fetching a single hospital.
func (h *HospitalHandler) GetHospitalByID(c *gin.Context) {
	hospitalID := c.Param("id")

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Hospital fetched successfully", hospital)
}

// UpdateHospitalRequest represents the request body for updating a hospital.
type UpdateHospitalRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateHospital handles updating a hospital (admin/staff).
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	hospitalID := c.Param("id")

	var req UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		hospital.Name = req.Name
	}
	if req.Address != "" {
		hospital.Address = req.Address
	}
	if req.City != "" {
		hospital.City = req.City
	}
	if req.PhoneNumber != "" {
		hospital.PhoneNumber = req.PhoneNumber
	}

	if err := h.DB.Save(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to update hospital: "+err.Error())
		return
	}

	utils.Success(c, "Hospital updated successfully", hospital)
}
