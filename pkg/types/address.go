package types

// Address is the business address carried on seller profiles. It is stored as
// flat columns rather than a composite type so sqlite-backed tests can share
// the schema.
type Address struct {
	Line1      string  `json:"line1" gorm:"column:address_line1"`
	Line2      *string `json:"line2,omitempty" gorm:"column:address_line2"`
	City       string  `json:"city" gorm:"column:address_city"`
	State      string  `json:"state" gorm:"column:address_state"`
	PostalCode string  `json:"postal_code" gorm:"column:address_postal_code"`
	Country    string  `json:"country" gorm:"column:address_country"`
}
