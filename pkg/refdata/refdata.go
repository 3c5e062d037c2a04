package refdata

import "sort"

// Country is a reference country entry.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var countriesByCode = map[string]string{
	"AE": "United Arab Emirates",
	"AU": "Australia",
	"BD": "Bangladesh",
	"BR": "Brazil",
	"CA": "Canada",
	"CN": "China",
	"DE": "Germany",
	"EG": "Egypt",
	"ES": "Spain",
	"FR": "France",
	"GB": "United Kingdom",
	"ID": "Indonesia",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KE": "Kenya",
	"KR": "South Korea",
	"LK": "Sri Lanka",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NG": "Nigeria",
	"NL": "Netherlands",
	"NP": "Nepal",
	"PH": "Philippines",
	"PK": "Pakistan",
	"SA": "Saudi Arabia",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"US": "United States",
	"VN": "Vietnam",
	"ZA": "South Africa",
}

var currencies = []string{
	"AED", "AUD", "BDT", "CAD", "CNY", "EUR", "GBP", "IDR", "INR", "JPY",
	"KRW", "LKR", "MYR", "NPR", "PHP", "PKR", "SAR", "SGD", "THB", "TRY",
	"USD", "VND", "ZAR",
}

// ListCountries returns the reference country list ordered by code.
func ListCountries() []Country {
	out := make([]Country, 0, len(countriesByCode))
	for code, name := range countriesByCode {
		out = append(out, Country{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ListCurrencies returns the supported ISO currency codes.
func ListCurrencies() []string {
	out := make([]string, len(currencies))
	copy(out, currencies)
	return out
}

// IsCountry reports whether the code is a known country.
func IsCountry(code string) bool {
	_, ok := countriesByCode[code]
	return ok
}

// IsCurrency reports whether the code is a supported currency.
func IsCurrency(code string) bool {
	for _, candidate := range currencies {
		if candidate == code {
			return true
		}
	}
	return false
}
