package constants

// LicenseStatus is the canonical status for rows in the drivers table.
type LicenseStatus string

// Stable values (store these exact strings in DB).
const (
	StatusActive    LicenseStatus = "active"    // eligible for matching by default
	StatusExpired   LicenseStatus = "expired"   // past expiry date
	StatusSuspended LicenseStatus = "suspended" // administratively suspended
	StatusRevoked   LicenseStatus = "revoked"   // terminal
)

// LicenseStatuses returns the allowed status strings, used by the import
// schema enum and by CLI validation.
func LicenseStatuses() []string {
	return []string{
		string(StatusActive),
		string(StatusExpired),
		string(StatusSuspended),
		string(StatusRevoked),
	}
}
