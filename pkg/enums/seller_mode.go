package enums

import "fmt"

// SellerMode is the subscription tier that gates listing quota, file sharing,
// and listing priority.
type SellerMode string

const (
	SellerModeBasic    SellerMode = "basic"
	SellerModeAdvanced SellerMode = "advanced"
)

var validSellerModes = []SellerMode{
	SellerModeBasic,
	SellerModeAdvanced,
}

// String implements fmt.Stringer.
func (m SellerMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SellerMode.
func (m SellerMode) IsValid() bool {
	for _, candidate := range validSellerModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSellerMode converts raw input into a SellerMode.
func ParseSellerMode(value string) (SellerMode, error) {
	for _, candidate := range validSellerModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller mode %q", value)
}
