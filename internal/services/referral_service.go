package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-app-server/internal/logger"
	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

// ReferralService owns the referral lifecycle: creation by a referring
// doctor, status progression and policy-scoped reads. Referrals are never
// deleted.
type ReferralService struct {
	db *gorm.DB
}

// NewReferralService creates a new ReferralService.
func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

// CreateReferralInput carries the fields needed to issue a referral.
type CreateReferralInput struct {
	PatientID  string
	HospitalID string
	Specialty  string
	Reason     string
	Notes      string
}

// Create issues a new referral on behalf of the acting doctor. Admin and
// staff actors must name the referring doctor explicitly.
func (s *ReferralService) Create(ctx context.Context, actor policy.Actor, referringDoctorID string, in CreateReferralInput) (*models.Referral, error) {
	if actor.Role == models.RoleDoctor {
		referringDoctorID = actor.DoctorID
	}
	if referringDoctorID == "" {
		return nil, fmt.Errorf("%w: referring doctor is required", ErrValidation)
	}

	referral := models.Referral{
		PatientID:         in.PatientID,
		ReferringDoctorID: referringDoctorID,
		HospitalID:        in.HospitalID,
		Specialty:         in.Specialty,
		Reason:            in.Reason,
		Notes:             in.Notes,
		Status:            models.ReferralStatusPending,
	}
	if !policy.CanAccess(actor, &referral, policy.OpWrite) {
		return nil, fmt.Errorf("%w: not allowed to create referrals for this doctor", ErrForbidden)
	}

	db := s.db.WithContext(ctx)
	if err := db.First(&models.Patient{}, "id = ?", in.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: patient %s", ErrNotFound, in.PatientID)
		}
		return nil, err
	}
	if err := db.First(&models.Hospital{}, "id = ?", in.HospitalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hospital %s", ErrNotFound, in.HospitalID)
		}
		return nil, err
	}
	if err := db.First(&models.Doctor{}, "id = ?", referringDoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, referringDoctorID)
		}
		return nil, err
	}

	if err := db.Create(&referral).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("referral created",
		zap.String("referralId", referral.ID),
		zap.String("patientId", referral.PatientID),
		zap.String("doctorId", referral.ReferringDoctorID))

	return s.load(ctx, referral.ID)
}

// GetByID fetches a single referral with its joined patient, doctor and
// hospital, subject to the access policy.
func (s *ReferralService) GetByID(ctx context.Context, actor policy.Actor, id string) (*models.Referral, error) {
	referral, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, referral, policy.OpRead) {
		return nil, fmt.Errorf("%w: not allowed to view this referral", ErrForbidden)
	}
	return referral, nil
}

// ReferralFilter narrows referral listings. Zero values are ignored.
type ReferralFilter struct {
	PatientID string
	Status    models.ReferralStatus
}

// List returns referrals visible to the actor, newest first. Doctors only
// see referrals they issued.
func (s *ReferralService) List(ctx context.Context, actor policy.Actor, filter ReferralFilter) ([]models.Referral, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown referral status %q", ErrValidation, filter.Status)
	}

	query := s.db.WithContext(ctx).
		Preload("Patient").Preload("ReferringDoctor").Preload("Hospital").
		Order("created_at desc")
	query, ok := policy.Scope(actor, query, "referring_doctor_id")
	if !ok {
		return nil, fmt.Errorf("%w: not allowed to list referrals", ErrForbidden)
	}
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var referrals []models.Referral
	if err := query.Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// SetStatus moves the referral to the requested status. Any enumerated
// value may follow any other; only enum membership is enforced.
func (s *ReferralService) SetStatus(ctx context.Context, actor policy.Actor, id string, status models.ReferralStatus) (*models.Referral, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown referral status %q", ErrValidation, status)
	}

	referral, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, referral, policy.OpWrite) {
		return nil, fmt.Errorf("%w: not allowed to update this referral", ErrForbidden)
	}

	referral.Status = status
	if err := s.db.WithContext(ctx).Model(referral).Update("status", status).Error; err != nil {
		return nil, err
	}
	return referral, nil
}

// UpdateNotes replaces the referral's notes.
func (s *ReferralService) UpdateNotes(ctx context.Context, actor policy.Actor, id, notes string) (*models.Referral, error) {
	referral, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, referral, policy.OpWrite) {
		return nil, fmt.Errorf("%w: not allowed to update this referral", ErrForbidden)
	}

	referral.Notes = notes
	if err := s.db.WithContext(ctx).Model(referral).Update("notes", notes).Error; err != nil {
		return nil, err
	}
	return referral, nil
}

func (s *ReferralService) load(ctx context.Context, id string) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("ReferringDoctor").Preload("Hospital").
		First(&referral, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: referral %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &referral, nil
}
