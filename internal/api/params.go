package api

import (
	"net/http"
	"strconv"

	"tenantadmin-backend/internal/domain"
)

// parsePage reads the common pagination query parameters. Out-of-range
// values are left to Normalize; an unknown sort field is rejected by the
// service layer.
func parsePage(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	sortDesc, _ := strconv.ParseBool(q.Get("sort_desc"))
	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		SortBy:   q.Get("sort_by"),
		SortDesc: sortDesc,
	}
}
