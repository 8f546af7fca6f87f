package domain

import (
	"time"
)

// DateFormat is the wire format for birth dates.
const DateFormat = "2006-01-02"

// RoleUser is the single role every customer holds. There is no role model
// beyond this.
const RoleUser = "ROLE_USER"

// Customer is a registered customer record. The name doubles as the login
// principal and is unique (case-sensitive).
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	BirthDate      time.Time `json:"birth_date"`
	Gender         string    `json:"gender"`
	ProfileImageID string    `json:"profile_image_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SameBirthDate compares birth dates by calendar value, ignoring time-of-day
// and location differences from storage round-trips.
func (c *Customer) SameBirthDate(other time.Time) bool {
	y1, m1, d1 := c.BirthDate.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// CustomerView is the public projection of a customer returned by the API.
// The password hash is never included.
type CustomerView struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Username       string   `json:"username"`
	BirthDate      string   `json:"birthDate"`
	Gender         string   `json:"gender"`
	Roles          []string `json:"roles"`
	ProfileImageID string   `json:"profileImageId,omitempty"`
}

// View builds the public projection. Username mirrors the name, the login
// principal expected by API clients.
func (c *Customer) View() CustomerView {
	return CustomerView{
		ID:             c.ID,
		Name:           c.Name,
		Username:       c.Name,
		BirthDate:      c.BirthDate.Format(DateFormat),
		Gender:         c.Gender,
		Roles:          []string{RoleUser},
		ProfileImageID: c.ProfileImageID,
	}
}

// ParseDate parses a yyyy-MM-dd date string in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}
