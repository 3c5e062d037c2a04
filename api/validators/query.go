package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter "+name+" must be an integer")
	}
	return value, nil
}

// ParsePagination reads the limit and cursor query parameters and clamps
// the limit to the service-wide bounds.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", 0)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  pagination.NormalizeLimit(limit),
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
