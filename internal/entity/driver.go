package entity

import (
	"github.com/victoedr/idcard-verifier/constants"
)

// DriverRecord represents one row of the licensed-driver table for data
// transfer between layers. Dates are carried as ISO-8601 strings exactly as
// stored; nothing in the matching pipeline interprets them.
type DriverRecord struct {
	ID            int64  `json:"id"`
	LicenseNumber string `json:"license_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	IssueDate     string `json:"issue_date,omitempty"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	Address       string `json:"address,omitempty"`
	LicenseClass  string `json:"license_class,omitempty"`
	Status        string `json:"status"`
}

// FullName joins the name parts with a space.
func (d DriverRecord) FullName() string {
	switch {
	case d.FirstName != "" && d.LastName != "":
		return d.FirstName + " " + d.LastName
	case d.FirstName != "":
		return d.FirstName
	default:
		return d.LastName
	}
}

func (d DriverRecord) IsActive() bool {
	return d.Status == string(constants.StatusActive)
}
