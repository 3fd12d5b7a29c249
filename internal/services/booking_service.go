package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-app-server/internal/logger"
	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

// BookingService coordinates referral-to-appointment linkage: it creates
// an appointment from a booking request and, when the booking consumes a
// referral, advances the referral and sets its back-link in the same
// transaction as the appointment insert.
type BookingService struct {
	db *gorm.DB
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// BookingInput carries a booking request. ReferralID is optional; when set
// the referral is consumed by the booking.
type BookingInput struct {
	PatientID       string
	DoctorID        string
	StartTime       time.Time
	DurationMinutes int
	Reason          string
	ReferralID      string
}

// BookingResult is the joined appointment plus any non-blocking warnings
// raised during booking (e.g. specialty mismatch). Warnings are returned
// to the caller and logged for audit; they never fail the booking.
type BookingResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// CreateAppointmentFromBooking books an appointment and, if a referral is
// named, links the two records as one unit of work. The referral update is
// conditional on the status observed during validation so that two
// concurrent bookings cannot both consume the same referral.
func (s *BookingService) CreateAppointmentFromBooking(ctx context.Context, actor policy.Actor, in BookingInput) (*BookingResult, error) {
	appointment := models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
		Status:          models.StatusScheduled,
	}
	if !policy.CanAccess(actor, &appointment, policy.OpWrite) {
		return nil, fmt.Errorf("%w: not allowed to book for this doctor", ErrForbidden)
	}

	db := s.db.WithContext(ctx)

	if err := db.First(&models.Patient{}, "id = ?", in.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: patient %s", ErrNotFound, in.PatientID)
		}
		return nil, err
	}
	var doctor models.Doctor
	if err := db.Preload("Affiliations").First(&doctor, "id = ?", in.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, in.DoctorID)
		}
		return nil, err
	}

	var (
		referral       *models.Referral
		observedStatus models.ReferralStatus
	)
	if in.ReferralID != "" {
		var r models.Referral
		if err := db.First(&r, "id = ?", in.ReferralID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: referral %s", ErrNotFound, in.ReferralID)
			}
			return nil, err
		}
		if r.PatientID != in.PatientID {
			return nil, fmt.Errorf("%w: referral %s was issued for a different patient", ErrValidation, r.ID)
		}
		if r.RelatedAppointmentID != nil {
			return nil, fmt.Errorf("%w: referral %s already has a linked appointment", ErrConflict, r.ID)
		}
		referral = &r
		observedStatus = r.Status
	}

	warnings := s.collectWarnings(&doctor, referral)

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if referral != nil {
			appointment.ReferralID = &referral.ID
		}
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}

		if referral != nil {
			if err := s.linkReferral(tx, referral.ID, observedStatus, appointment.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	joined, err := s.loadJoined(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Appointment: joined, Warnings: warnings}, nil
}

// linkReferral advances the referral to appointment_scheduled and sets its
// back-link, conditional on the status observed before the transaction. A
// transient failure is retried once; a second failure is surfaced as a
// partial-link failure so the caller can flag the booking for
// reconciliation (the transaction rolls back either way).
func (s *BookingService) linkReferral(tx *gorm.DB, referralID string, observedStatus models.ReferralStatus, appointmentID string) error {
	updates := map[string]interface{}{
		"status":                 models.ReferralStatusAppointmentScheduled,
		"related_appointment_id": appointmentID,
	}

	res := tx.Model(&models.Referral{}).
		Where("id = ? AND status = ?", referralID, observedStatus).
		Updates(updates)
	if res.Error != nil {
		logger.Log.Warn("referral link update failed, retrying once",
			zap.String("referralId", referralID),
			zap.String("appointmentId", appointmentID),
			zap.Error(res.Error))
		res = tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", referralID, observedStatus).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("%w: referral %s: %v", ErrPartialLinkFailure, referralID, res.Error)
		}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: referral %s was consumed by a concurrent booking", ErrConflict, referralID)
	}
	return nil
}

// collectWarnings compares the booking doctor against the referral's
// requested specialty and hospital. Mismatches never block the booking;
// they are returned to the caller and logged for audit.
func (s *BookingService) collectWarnings(doctor *models.Doctor, referral *models.Referral) []string {
	if referral == nil {
		return nil
	}

	var warnings []string
	if referral.Specialty != "" && doctor.Specialty != referral.Specialty {
		warnings = append(warnings, fmt.Sprintf(
			"doctor specialty %q does not match the referral's requested specialty %q",
			doctor.Specialty, referral.Specialty))
	}
	if !doctor.AffiliatedWith(referral.HospitalID) {
		warnings = append(warnings, "doctor is not affiliated with the referral's hospital")
	}

	for _, w := range warnings {
		logger.Log.Warn("referral booking mismatch",
			zap.String("referralId", referral.ID),
			zap.String("doctorId", doctor.ID),
			zap.String("warning", w))
	}
	return warnings
}

func (s *BookingService) loadJoined(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").Preload("Doctor.User").Preload("Referral").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}
