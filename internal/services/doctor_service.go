package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

// DoctorService manages doctor records and their hospital affiliations.
type DoctorService struct {
	db *gorm.DB
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(db *gorm.DB) *DoctorService {
	return &DoctorService{db: db}
}

// AddAffiliation affiliates the doctor with a hospital. Adding the same
// hospital twice fails: affiliations are unique per doctor.
func (s *DoctorService) AddAffiliation(ctx context.Context, actor policy.Actor, doctorID, hospitalID, department string) (*models.Doctor, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleStaff &&
		!(actor.Role == models.RoleDoctor && actor.DoctorID == doctorID) {
		return nil, fmt.Errorf("%w: not allowed to manage this doctor's affiliations", ErrForbidden)
	}

	db := s.db.WithContext(ctx)

	var doctor models.Doctor
	if err := db.Preload("Affiliations").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
		}
		return nil, err
	}
	if err := db.First(&models.Hospital{}, "id = ?", hospitalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hospital %s", ErrNotFound, hospitalID)
		}
		return nil, err
	}

	if doctor.AffiliatedWith(hospitalID) {
		return nil, fmt.Errorf("%w: doctor is already affiliated with this hospital", ErrValidation)
	}

	affiliation := models.DoctorAffiliation{
		DoctorID:   doctorID,
		HospitalID: hospitalID,
		Department: department,
	}
	if err := db.Create(&affiliation).Error; err != nil {
		return nil, err
	}

	return s.load(ctx, doctorID)
}

// RemoveAffiliation drops the doctor's affiliation with a hospital.
func (s *DoctorService) RemoveAffiliation(ctx context.Context, actor policy.Actor, doctorID, hospitalID string) (*models.Doctor, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleStaff &&
		!(actor.Role == models.RoleDoctor && actor.DoctorID == doctorID) {
		return nil, fmt.Errorf("%w: not allowed to manage this doctor's affiliations", ErrForbidden)
	}

	db := s.db.WithContext(ctx)

	res := db.Where("doctor_id = ? AND hospital_id = ?", doctorID, hospitalID).
		Delete(&models.DoctorAffiliation{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: affiliation of doctor %s with hospital %s", ErrNotFound, doctorID, hospitalID)
	}

	return s.load(ctx, doctorID)
}

func (s *DoctorService) load(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.WithContext(ctx).
		Preload("Affiliations").Preload("Affiliations.Hospital").Preload("User").
		First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &doctor, nil
}
