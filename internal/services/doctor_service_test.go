package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-app-server/internal/models"
)

func TestDoctorAffiliations(t *testing.T) {
	ctx := context.Background()

	t.Run("adding the same hospital twice fails", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewDoctorService(db)

		doctor, err := svc.AddAffiliation(ctx, adminActor(), f.Doctor.ID, f.Hospital.ID, "cardiology")
		require.NoError(t, err)
		assert.Len(t, doctor.Affiliations, 1)

		_, err = svc.AddAffiliation(ctx, adminActor(), f.Doctor.ID, f.Hospital.ID, "cardiology")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		var count int64
		require.NoError(t, db.Model(&models.DoctorAffiliation{}).Where("doctor_id = ?", f.Doctor.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("doctor manages own affiliations only", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewDoctorService(db)

		_, err := svc.AddAffiliation(ctx, doctorActor(f.Doctor.ID), f.Doctor.ID, f.Hospital.ID, "")
		require.NoError(t, err)

		_, err = svc.RemoveAffiliation(ctx, doctorActor("other-doctor"), f.Doctor.ID, f.Hospital.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("remove drops the affiliation", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewDoctorService(db)

		_, err := svc.AddAffiliation(ctx, adminActor(), f.Doctor.ID, f.Hospital.ID, "")
		require.NoError(t, err)

		doctor, err := svc.RemoveAffiliation(ctx, adminActor(), f.Doctor.ID, f.Hospital.ID)
		require.NoError(t, err)
		assert.Empty(t, doctor.Affiliations)

		_, err = svc.RemoveAffiliation(ctx, adminActor(), f.Doctor.ID, f.Hospital.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("unknown doctor or hospital fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		f := seedFixtures(t, db)
		svc := NewDoctorService(db)

		_, err := svc.AddAffiliation(ctx, adminActor(), "missing", f.Hospital.ID, "")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = svc.AddAffiliation(ctx, adminActor(), f.Doctor.ID, "missing", "")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
