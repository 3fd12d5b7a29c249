package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

func TestReferralCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("doctor creates referral as themselves", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewReferralService(db)

		referral, err := svc.Create(ctx, doctorActor(f.Doctor.ID), "", CreateReferralInput{
			PatientID:  f.Patient.ID,
			HospitalID: f.Hospital.ID,
			Specialty:  "cardiology",
			Reason:     "murmur",
		})
		require.NoError(t, err)
		assert.Equal(t, f.Doctor.ID, referral.ReferringDoctorID)
		assert.Equal(t, models.ReferralStatusPending, referral.Status)
		assert.Nil(t, referral.RelatedAppointmentID)
	})

	t.Run("staff must name the referring doctor", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewReferralService(db)

		_, err := svc.Create(ctx, staffActor(), "", CreateReferralInput{
			PatientID:  f.Patient.ID,
			HospitalID: f.Hospital.ID,
			Specialty:  "cardiology",
			Reason:     "murmur",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		referral, err := svc.Create(ctx, staffActor(), f.Doctor.ID, CreateReferralInput{
			PatientID:  f.Patient.ID,
			HospitalID: f.Hospital.ID,
			Specialty:  "cardiology",
			Reason:     "murmur",
		})
		require.NoError(t, err)
		assert.Equal(t, f.Doctor.ID, referral.ReferringDoctorID)
	})

	t.Run("unknown patient or hospital fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewReferralService(db)

		_, err := svc.Create(ctx, doctorActor(f.Doctor.ID), "", CreateReferralInput{
			PatientID:  "missing",
			HospitalID: f.Hospital.ID,
			Specialty:  "cardiology",
		})
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = svc.Create(ctx, doctorActor(f.Doctor.ID), "", CreateReferralInput{
			PatientID:  f.Patient.ID,
			HospitalID: "missing",
			Specialty:  "cardiology",
		})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestReferralSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status fails and leaves the record unchanged", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		svc := NewReferralService(db)

		_, err := svc.SetStatus(ctx, adminActor(), referral.ID, models.ReferralStatus("teleported"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		var unchanged models.Referral
		require.NoError(t, db.First(&unchanged, "id = ?", referral.ID).Error)
		assert.Equal(t, models.ReferralStatusPending, unchanged.Status)
	})

	t.Run("any enumerated value may follow any other", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		svc := NewReferralService(db)

		// No transition-order enforcement: completed straight from pending,
		// then back to sent_to_hospital.
		updated, err := svc.SetStatus(ctx, adminActor(), referral.ID, models.ReferralStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.ReferralStatusCompleted, updated.Status)

		updated, err = svc.SetStatus(ctx, adminActor(), referral.ID, models.ReferralStatusSentToHospital)
		require.NoError(t, err)
		assert.Equal(t, models.ReferralStatusSentToHospital, updated.Status)
	})

	t.Run("doctor may update only own referrals", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		referral := seedReferral(t, db, f, models.ReferralStatusPending)
		svc := NewReferralService(db)

		_, err := svc.SetStatus(ctx, doctorActor(f.Doctor.ID), referral.ID, models.ReferralStatusSentToHospital)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, doctorActor("other-doctor"), referral.ID, models.ReferralStatusCancelled)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})
}

func TestReferralList(t *testing.T) {
	ctx := context.Background()

	db := newTestDB(t)
	f := seedFixtures(t, db)
	seedReferral(t, db, f, models.ReferralStatusPending)
	seedReferral(t, db, f, models.ReferralStatusSentToHospital)

	// A second doctor with one referral of their own
	user := models.User{Email: "dr.second@example.com", Role: models.RoleDoctor}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	second := models.Doctor{UserID: user.ID, Specialty: "neurology"}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&models.Referral{
		PatientID:         f.Patient.ID,
		ReferringDoctorID: second.ID,
		HospitalID:        f.Hospital.ID,
		Specialty:         "neurology",
		Status:            models.ReferralStatusPending,
	}).Error)

	svc := NewReferralService(db)

	t.Run("admin sees all referrals", func(t *testing.T) {
		referrals, err := svc.List(ctx, adminActor(), ReferralFilter{})
		require.NoError(t, err)
		assert.Len(t, referrals, 3)
	})

	t.Run("doctor sees only own referrals", func(t *testing.T) {
		referrals, err := svc.List(ctx, doctorActor(f.Doctor.ID), ReferralFilter{})
		require.NoError(t, err)
		assert.Len(t, referrals, 2)
		for _, r := range referrals {
			assert.Equal(t, f.Doctor.ID, r.ReferringDoctorID)
		}
	})

	t.Run("other roles are denied", func(t *testing.T) {
		_, err := svc.List(ctx, policy.Actor{UserID: "u1", Role: models.RoleUser}, ReferralFilter{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})
}

func TestReferralGetByID(t *testing.T) {
	ctx := context.Background()

	db := newTestDB(t)
	f := seedFixtures(t, db)
	referral := seedReferral(t, db, f, models.ReferralStatusPending)
	svc := NewReferralService(db)

	t.Run("owning doctor reads the referral", func(t *testing.T) {
		got, err := svc.GetByID(ctx, doctorActor(f.Doctor.ID), referral.ID)
		require.NoError(t, err)
		assert.Equal(t, referral.ID, got.ID)
		assert.Equal(t, f.Patient.ID, got.Patient.ID)
	})

	t.Run("unrelated doctor is denied", func(t *testing.T) {
		_, err := svc.GetByID(ctx, doctorActor("other-doctor"), referral.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("missing referral is not found", func(t *testing.T) {
		_, err := svc.GetByID(ctx, adminActor(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
