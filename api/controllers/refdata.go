package controllers

import (
	"net/http"

	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
)

// ListCountries returns the supported delivery country list.
func ListCountries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, refdata.ListCountries())
	}
}

// ListCurrencies returns the supported currency codes.
func ListCurrencies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, refdata.ListCurrencies())
	}
}
