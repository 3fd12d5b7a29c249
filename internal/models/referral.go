package models

// ReferralStatus represents the status of a referral
type ReferralStatus string

const (
	ReferralStatusPending              ReferralStatus = "pending"
	ReferralStatusSentToHospital       ReferralStatus = "sent_to_hospital"
	ReferralStatusReceivedByPatient    ReferralStatus = "received_by_patient"
	ReferralStatusBookingRequired      ReferralStatus = "booking_required"
	ReferralStatusAppointmentScheduled ReferralStatus = "appointment_scheduled"
	ReferralStatusCompleted            ReferralStatus = "completed"
	ReferralStatusCancelled            ReferralStatus = "cancelled"
)

// IsValid reports whether the status is one of the enumerated values.
func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralStatusPending, ReferralStatusSentToHospital, ReferralStatusReceivedByPatient,
		ReferralStatusBookingRequired, ReferralStatusAppointmentScheduled,
		ReferralStatusCompleted, ReferralStatusCancelled:
		return true
	}
	return false
}

// Referral represents a clinical hand-off directing a patient to a
// specialty/hospital. Referrals are never deleted; they only move
// through their status lifecycle.
type Referral struct {
	BaseModel
	PatientID            string         `gorm:"size:36;index;not null" json:"patientId"`
	ReferringDoctorID    string         `gorm:"size:36;index;not null" json:"referringDoctorId"`
	HospitalID           string         `gorm:"size:36;index;not null" json:"hospitalId"`
	Specialty            string         `gorm:"size:100" json:"specialty"`
	Reason               string         `gorm:"size:255" json:"reason"`
	Notes                string         `gorm:"type:text" json:"notes"`
	Status               ReferralStatus `gorm:"size:30;default:'pending'" json:"status"`
	RelatedAppointmentID *string        `gorm:"size:36;index" json:"relatedAppointmentId,omitempty"`

	// Relations. The appointment back-link stays a bare ID column: a
	// navigation property here would declare a circular foreign key with
	// Appointment.Referral.
	Patient         Patient  `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	ReferringDoctor Doctor   `gorm:"foreignKey:ReferringDoctorID" json:"referringDoctor,omitempty"`
	Hospital        Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// DoctorRef returns the doctor identity that owns this referral for
// access-policy checks.
func (r *Referral) DoctorRef() string {
	return r.ReferringDoctorID
}
