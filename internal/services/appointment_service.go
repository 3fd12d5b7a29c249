package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

// AppointmentService owns the appointment lifecycle: direct booking,
// status progression, rescheduling and policy-scoped reads. Appointments
// are never deleted. Referral-linked booking lives in BookingService.
type AppointmentService struct {
	db *gorm.DB
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// CreateAppointmentInput carries the fields for a direct booking, without
// an originating referral.
type CreateAppointmentInput struct {
	PatientID       string
	DoctorID        string
	StartTime       time.Time
	DurationMinutes int
	Reason          string
	Notes           string
}

// Create books an appointment directly, without a referral.
func (s *AppointmentService) Create(ctx context.Context, actor policy.Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	appointment := models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
		Notes:           in.Notes,
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
	if err := db.First(&models.Doctor{}, "id = ?", in.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, in.DoctorID)
		}
		return nil, err
	}

	if err := db.Create(&appointment).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, appointment.ID)
}

// GetByID fetches a single appointment with its joined patient, doctor and
// referral, subject to the access policy.
func (s *AppointmentService) GetByID(ctx context.Context, actor policy.Actor, id string) (*models.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, appointment, policy.OpRead) {
		return nil, fmt.Errorf("%w: not allowed to view this appointment", ErrForbidden)
	}
	return appointment, nil
}

// AppointmentFilter narrows appointment listings. Zero values are ignored.
type AppointmentFilter struct {
	PatientID string
	Status    models.AppointmentStatus
	From      time.Time
	To        time.Time
}

// List returns appointments visible to the actor ordered by start time
// ascending. Doctors only see their own calendar.
func (s *AppointmentService) List(ctx context.Context, actor policy.Actor, filter AppointmentFilter) ([]models.Appointment, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown appointment status %q", ErrValidation, filter.Status)
	}

	query := s.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").Preload("Referral").
		Order("start_time asc")
	query, ok := policy.Scope(actor, query, "doctor_id")
	if !ok {
		return nil, fmt.Errorf("%w: not allowed to list appointments", ErrForbidden)
	}
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("start_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("start_time < ?", filter.To)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// SetStatus moves the appointment to the requested status and optionally
// replaces its notes. Only enum membership is enforced.
func (s *AppointmentService) SetStatus(ctx context.Context, actor policy.Actor, id string, status models.AppointmentStatus, notes string) (*models.Appointment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown appointment status %q", ErrValidation, status)
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, appointment, policy.OpWrite) {
		return nil, fmt.Errorf("%w: not allowed to update this appointment", ErrForbidden)
	}

	updates := map[string]interface{}{"status": status}
	appointment.Status = status
	if notes != "" {
		updates["notes"] = notes
		appointment.Notes = notes
	}
	if err := s.db.WithContext(ctx).Model(appointment).Updates(updates).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

// Reschedule moves the appointment to a new start time. Rescheduling is
// an elevated operation: the policy restricts it to admin/staff actors,
// never the treating doctor or the patient.
func (s *AppointmentService) Reschedule(ctx context.Context, actor policy.Actor, id string, newStart time.Time, notes string) (*models.Appointment, error) {
	if newStart.Before(time.Now()) {
		return nil, fmt.Errorf("%w: new appointment time must be in the future", ErrValidation)
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, appointment, policy.OpReschedule) {
		return nil, fmt.Errorf("%w: not allowed to reschedule this appointment", ErrForbidden)
	}

	updates := map[string]interface{}{"start_time": newStart}
	appointment.StartTime = newStart
	if notes != "" {
		updates["notes"] = notes
		appointment.Notes = notes
	}
	if err := s.db.WithContext(ctx).Model(appointment).Updates(updates).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").Preload("Referral").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &appointment, nil
}
