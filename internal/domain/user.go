package domain

import "time"

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
)

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

type Customer struct {
	ID           int64     `json:"customer_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Telephone    string    `json:"telephone"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedOn    time.Time `json:"created_on"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Staff struct {
	ID           int64  `json:"staff_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	LocationID   int64  `json:"location_id"`
	IsActive     bool   `json:"is_active"`
}

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	ID   int64
	Role Role
}

// CanAccessCustomer reports whether the actor may act on the customer's records.
func (a Actor) CanAccessCustomer(customerID int64) bool {
	if a.Role.IsStaff() {
		return true
	}
	return a.Role == RoleCustomer && a.ID == customerID
}
