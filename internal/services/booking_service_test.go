package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

func TestCreateAppointmentFromBooking(t *testing.T) {
	ctx := context.Background()
	startTime := time.Now().Add(72 * time.Hour)

	t.Run("booking with referral links both records", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		svc := NewBookingService(db)

		result, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID:  f.Patient.ID,
			DoctorID:   f.Doctor.ID,
			StartTime:  startTime,
			Reason:     "cardiology consult",
			ReferralID: referral.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, result.Appointment)

		appointment := result.Appointment
		assert.Equal(t, models.StatusScheduled, appointment.Status)
		assert.Equal(t, f.Patient.ID, appointment.PatientID)
		assert.Equal(t, f.Doctor.ID, appointment.DoctorID)
		require.NotNil(t, appointment.ReferralID)
		assert.Equal(t, referral.ID, *appointment.ReferralID)

		// Referral must be advanced and back-linked to the appointment
		var updated models.Referral
		require.NoError(t, db.First(&updated, "id = ?", referral.ID).Error)
		assert.Equal(t, models.ReferralStatusAppointmentScheduled, updated.Status)
		require.NotNil(t, updated.RelatedAppointmentID)
		assert.Equal(t, appointment.ID, *updated.RelatedAppointmentID)
	})

	t.Run("booking without referral creates a plain appointment", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		result, err := svc.CreateAppointmentFromBooking(ctx, staffActor(), BookingInput{
			PatientID: f.Patient.ID,
			DoctorID:  f.Doctor.ID,
			StartTime: startTime,
			Reason:    "walk-in",
		})
		require.NoError(t, err)
		assert.Nil(t, result.Appointment.ReferralID)
		assert.Empty(t, result.Warnings)
	})

	t.Run("referral issued for a different patient fails validation", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)

		other := models.Patient{FirstName: "John", LastName: "Smith"}
		require.NoError(t, db.Create(&other).Error)

		svc := NewBookingService(db)
		_, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID:  other.ID,
			DoctorID:   f.Doctor.ID,
			StartTime:  startTime,
			Reason:     "cardiology consult",
			ReferralID: referral.ID,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		// No appointment may be written and the referral must be untouched
		var count int64
		require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
		assert.Zero(t, count)

		var unchanged models.Referral
		require.NoError(t, db.First(&unchanged, "id = ?", referral.ID).Error)
		assert.Equal(t, models.ReferralStatusPending, unchanged.Status)
		assert.Nil(t, unchanged.RelatedAppointmentID)
	})

	t.Run("unknown patient fails with not found and writes nothing", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		_, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID: "missing-patient",
			DoctorID:  f.Doctor.ID,
			StartTime: startTime,
			Reason:    "consult",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var count int64
		require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown doctor fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		_, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID: f.Patient.ID,
			DoctorID:  "missing-doctor",
			StartTime: startTime,
			Reason:    "consult",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("unknown referral fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		_, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID:  f.Patient.ID,
			DoctorID:   f.Doctor.ID,
			StartTime:  startTime,
			Reason:     "consult",
			ReferralID: "missing-referral",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("specialty and affiliation mismatch warn but do not block", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusBookingRequired)

		// A dermatologist with no affiliations takes the booking anyway
		user := models.User{Email: "dr.skin@example.com", Role: models.RoleDoctor}
		require.NoError(t, user.SetPassword("password123"))
		require.NoError(t, db.Create(&user).Error)
		dermatologist := models.Doctor{UserID: user.ID, Specialty: "dermatology"}
		require.NoError(t, db.Create(&dermatologist).Error)

		svc := NewBookingService(db)
		result, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID:  f.Patient.ID,
			DoctorID:   dermatologist.ID,
			StartTime:  startTime,
			Reason:     "consult",
			ReferralID: referral.ID,
		})
		require.NoError(t, err)
		assert.Len(t, result.Warnings, 2)
		assert.Equal(t, models.StatusScheduled, result.Appointment.Status)
	})

	t.Run("affiliated matching doctor produces no warnings", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		require.NoError(t, db.Create(&models.DoctorAffiliation{
			DoctorID:   f.Doctor.ID,
			HospitalID: f.Hospital.ID,
			Department: "cardiology",
		}).Error)

		svc := NewBookingService(db)
		result, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), BookingInput{
			PatientID:  f.Patient.ID,
			DoctorID:   f.Doctor.ID,
			StartTime:  startTime,
			Reason:     "consult",
			ReferralID: referral.ID,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)
	})

	t.Run("referral can only be consumed once", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		svc := NewBookingService(db)

		in := BookingInput{
			PatientID:  f.Patient.ID,
			DoctorID:   f.Doctor.ID,
			StartTime:  startTime,
			Reason:     "consult",
			ReferralID: referral.ID,
		}
		_, err := svc.CreateAppointmentFromBooking(ctx, adminActor(), in)
		require.NoError(t, err)

		_, err = svc.CreateAppointmentFromBooking(ctx, adminActor(), in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConflict))

		var count int64
		require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("doctor may book into own calendar only", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		_, err := svc.CreateAppointmentFromBooking(ctx, doctorActor(f.Doctor.ID), BookingInput{
			PatientID: f.Patient.ID,
			DoctorID:  f.Doctor.ID,
			StartTime: startTime,
			Reason:    "consult",
		})
		require.NoError(t, err)

		_, err = svc.CreateAppointmentFromBooking(ctx, doctorActor("someone-else"), BookingInput{
			PatientID: f.Patient.ID,
			DoctorID:  f.Doctor.ID,
			StartTime: startTime,
			Reason:    "consult",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("patient role is denied", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewBookingService(db)

		_, err := svc.CreateAppointmentFromBooking(ctx, policy.Actor{UserID: "p1", Role: models.RolePatient}, BookingInput{
			PatientID: f.Patient.ID,
			DoctorID:  f.Doctor.ID,
			StartTime: startTime,
			Reason:    "consult",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})
}
