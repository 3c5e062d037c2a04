package tier

import "github.com/tradelinkhq/tradelink-backend/pkg/enums"

// DefaultBasicActiveProductCap is the listing quota applied to basic-tier
// sellers when no configured cap is supplied.
const DefaultBasicActiveProductCap = 5

// CanListMoreProducts reports whether a seller may activate another product.
// The cap counts active products only, so deactivating a listing frees quota
// without deleting data. Advanced sellers are uncapped.
func CanListMoreProducts(mode enums.SellerMode, activeCount, cap int) bool {
	if mode == enums.SellerModeAdvanced {
		return true
	}
	if cap <= 0 {
		cap = DefaultBasicActiveProductCap
	}
	return activeCount < cap
}

// CanShareFiles reports whether chat file attachments are allowed for the tier.
func CanShareFiles(mode enums.SellerMode) bool {
	return mode == enums.SellerModeAdvanced
}

// PriorityRank returns the sort key used when listing sellers to buyers or
// ordering RFQ responses. Lower ranks sort first.
func PriorityRank(mode enums.SellerMode) int {
	if mode == enums.SellerModeAdvanced {
		return 0
	}
	return 1
}
