package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"referral-app-server/internal/models"
	"referral-app-server/internal/policy"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A pooled connection would get its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

// fixtures holds the baseline entities most service tests need.
type fixtures struct {
	Patient  models.Patient
	Doctor   models.Doctor
	Hospital models.Hospital
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	user := models.User{Email: "dr.house@example.com", Role: models.RoleDoctor, FirstName: "Gregory", LastName: "House"}
	require.NoError(t, user.SetPassword("not-vicodin"))
	require.NoError(t, db.Create(&user).Error)

	doctor := models.Doctor{UserID: user.ID, Specialty: "cardiology"}
	require.NoError(t, db.Create(&doctor).Error)

	patient := models.Patient{FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, db.Create(&patient).Error)

	hospital := models.Hospital{Name: "General Hospital", City: "Springfield"}
	require.NoError(t, db.Create(&hospital).Error)

	return fixtures{Patient: patient, Doctor: doctor, Hospital: hospital}
}

func seedReferral(t *testing.T, db *gorm.DB, f fixtures, status models.ReferralStatus) models.Referral {
	t.Helper()
	referral := models.Referral{
		PatientID:         f.Patient.ID,
		ReferringDoctorID: f.Doctor.ID,
		HospitalID:        f.Hospital.ID,
		Specialty:         "cardiology",
		Reason:            "chest pain",
		Status:            status,
	}
	require.NoError(t, db.Create(&referral).Error)
	return referral
}

func adminActor() policy.Actor {
	return policy.Actor{UserID: "admin-user", Role: models.RoleAdmin}
}

func staffActor() policy.Actor {
	return policy.Actor{UserID: "staff-user", Role: models.RoleStaff}
}

func doctorActor(doctorID string) policy.Actor {
	return policy.Actor{UserID: "doctor-user", Role: models.RoleDoctor, DoctorID: doctorID}
}
