package enums

import "fmt"

// ShippingOption is the transport mode requested on inquiries and invoices.
type ShippingOption string

const (
	ShippingOptionAir     ShippingOption = "air"
	ShippingOptionSea     ShippingOption = "sea"
	ShippingOptionLand    ShippingOption = "land"
	ShippingOptionCourier ShippingOption = "courier"
)

var validShippingOptions = []ShippingOption{
	ShippingOptionAir,
	ShippingOptionSea,
	ShippingOptionLand,
	ShippingOptionCourier,
}

// String implements fmt.Stringer.
func (s ShippingOption) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingOption.
func (s ShippingOption) IsValid() bool {
	for _, candidate := range validShippingOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingOption converts raw input into a ShippingOption.
func ParseShippingOption(value string) (ShippingOption, error) {
	for _, candidate := range validShippingOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping option %q", value)
}
