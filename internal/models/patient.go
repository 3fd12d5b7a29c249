package models

import (
	"time"
)

// Patient represents a patient record. A patient may optionally be linked
// to a user account for portal access.
type Patient struct {
	BaseModel
	UserID      *string    `gorm:"size:36;index" json:"userId,omitempty"`
	FirstName   string     `gorm:"size:100;not null" json:"firstName"`
	LastName    string     `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber string     `gorm:"size:30" json:"phoneNumber,omitempty"`
	Address     string     `gorm:"size:255" json:"address,omitempty"`

	// Relations
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Referrals []Referral `gorm:"foreignKey:PatientID" json:"-"`
}
