package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled          AppointmentStatus = "scheduled"
	StatusConfirmed          AppointmentStatus = "confirmed"
	StatusCancelledByPatient AppointmentStatus = "cancelled_by_patient"
	StatusCancelledByClinic  AppointmentStatus = "cancelled_by_clinic"
	StatusCompleted          AppointmentStatus = "completed"
	StatusNoShow             AppointmentStatus = "no_show"
)

// IsValid reports whether the status is one of the enumerated values.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelledByPatient,
		StatusCancelledByClinic, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Appointment represents a scheduled medical appointment. An appointment
// created through referral booking carries a back-link to its referral.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index;not null" json:"doctorId"`
	StartTime       time.Time         `json:"startTime"`
	DurationMinutes int               `gorm:"default:30" json:"durationMinutes"`
	Status          AppointmentStatus `gorm:"size:30;default:'scheduled'" json:"status"`
	Reason          string            `gorm:"size:255" json:"reason"`
	Notes           string            `gorm:"type:text" json:"notes"`
	ReferralID      *string           `gorm:"size:36;index" json:"referralId,omitempty"`

	// Relations
	Patient  Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor   Doctor    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Referral *Referral `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`
}

// DoctorRef returns the doctor identity that owns this appointment for
// access-policy checks.
func (a *Appointment) DoctorRef() string {
	return a.DoctorID
}
