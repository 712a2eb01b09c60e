// README: License compliance window derived client-side for the drivers view.
package fleet

import "time"

type Compliance string

const (
	ComplianceExpired  Compliance = "Expired"
	ComplianceExpiring Compliance = "Expiring Soon"
	ComplianceValid    Compliance = "Valid"
)

// complianceWindowDays is how far ahead an upcoming expiry is flagged.
const complianceWindowDays = 30

// ComplianceAt classifies the driver's license against the given day.
func (d Driver) ComplianceAt(now time.Time) Compliance {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case d.LicenseExpiry.Time.Before(day):
		return ComplianceExpired
	case d.LicenseExpiry.Time.Before(day.AddDate(0, 0, complianceWindowDays)):
		return ComplianceExpiring
	default:
		return ComplianceValid
	}
}
