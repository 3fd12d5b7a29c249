package models

// Hospital represents a hospital that referrals can be directed to.
type Hospital struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Address     string `gorm:"size:255" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	PhoneNumber string `gorm:"size:30" json:"phoneNumber,omitempty"`

	// Relations
	Referrals    []Referral          `gorm:"foreignKey:HospitalID" json:"-"`
	Affiliations []DoctorAffiliation `gorm:"foreignKey:HospitalID" json:"-"`
}
