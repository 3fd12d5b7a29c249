// Package policy implements the role/identity-based authorization rules
// guarding referral and appointment operations. Decisions are pure: they
// depend only on the actor and the resource, never on request state.
package policy

import (
	"gorm.io/gorm"

	"referral-app-server/internal/models"
)

// Operation is a requested action on a guarded resource.
type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
	// OpReschedule is an elevated write: changing an appointment's time is
	// reserved for administrative/staff actors.
	OpReschedule Operation = "reschedule"
)

// Actor describes the authenticated caller, as supplied by the auth layer.
// DoctorID is set only when Role is doctor.
type Actor struct {
	UserID   string
	Role     models.Role
	DoctorID string
}

// Resource is any record guarded by the policy. DoctorRef returns the
// doctor identity the record belongs to (assigned doctor for appointments,
// referring doctor for referrals).
type Resource interface {
	DoctorRef() string
}

// CanAccess decides whether the actor may perform op on the resource.
// Rules are evaluated in precedence order:
//  1. admin/staff may do anything
//  2. doctors may read/write their own records
//  3. everyone else is denied
func CanAccess(actor Actor, res Resource, op Operation) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleStaff:
		return true
	case models.RoleDoctor:
		if op == OpReschedule {
			return false
		}
		return actor.DoctorID != "" && actor.DoctorID == res.DoctorRef()
	}
	return false
}

// Scope applies the read rule to a list query as a filter: admin/staff see
// everything, doctors see rows where doctorColumn matches their identity,
// everyone else is denied. The second return value reports whether the
// actor may list at all.
func Scope(actor Actor, query *gorm.DB, doctorColumn string) (*gorm.DB, bool) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleStaff:
		return query, true
	case models.RoleDoctor:
		if actor.DoctorID == "" {
			return nil, false
		}
		return query.Where(doctorColumn+" = ?", actor.DoctorID), true
	}
	return nil, false
}
