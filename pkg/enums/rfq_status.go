package enums

import "fmt"

// RFQStatus tracks the lifecycle of a request for quotation. Only open and
// closed are stored; expired is computed at read time from the expiry date.
type RFQStatus string

const (
	RFQStatusOpen    RFQStatus = "open"
	RFQStatusClosed  RFQStatus = "closed"
	RFQStatusExpired RFQStatus = "expired"
)

var validRFQStatuses = []RFQStatus{
	RFQStatusOpen,
	RFQStatusClosed,
	RFQStatusExpired,
}

// String implements fmt.Stringer.
func (s RFQStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RFQStatus.
func (s RFQStatus) IsValid() bool {
	for _, candidate := range validRFQStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRFQStatus converts raw input into an RFQStatus.
func ParseRFQStatus(value string) (RFQStatus, error) {
	for _, candidate := range validRFQStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rfq status %q", value)
}
