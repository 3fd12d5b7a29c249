package models

// Doctor represents a doctor's professional record, linked to a user account.
type Doctor struct {
	BaseModel
	UserID    string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialty string `gorm:"size:100" json:"specialty"`

	// Relations
	User         User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Affiliations []DoctorAffiliation `gorm:"foreignKey:DoctorID" json:"affiliations,omitempty"`
	Referrals    []Referral          `gorm:"foreignKey:ReferringDoctorID" json:"-"`
	Appointments []Appointment       `gorm:"foreignKey:DoctorID" json:"-"`
}

// DoctorAffiliation links a doctor to a hospital, optionally scoped to a
// department. A doctor may be affiliated to a given hospital at most once.
type DoctorAffiliation struct {
	BaseModel
	DoctorID   string `gorm:"size:36;not null;uniqueIndex:idx_doctor_hospital" json:"doctorId"`
	HospitalID string `gorm:"size:36;not null;uniqueIndex:idx_doctor_hospital" json:"hospitalId"`
	Department string `gorm:"size:100" json:"department,omitempty"`

	// Relations
	Doctor   Doctor   `gorm:"foreignKey:DoctorID" json:"-"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// AffiliatedWith reports whether the doctor has an affiliation with the
// given hospital. Affiliations must be preloaded.
func (d *Doctor) AffiliatedWith(hospitalID string) bool {
	for _, a := range d.Affiliations {
		if a.HospitalID == hospitalID {
			return true
		}
	}
	return false
}
