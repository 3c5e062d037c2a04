package enums

// StockStatus is the derived availability bucket shown on product listings.
// It is never persisted; it is computed from remaining stock against the
// configured low-stock threshold.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// StockStatusFor buckets the remaining quantity.
func StockStatusFor(remaining, threshold int) StockStatus {
	switch {
	case remaining <= 0:
		return StockStatusOutOfStock
	case remaining <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
