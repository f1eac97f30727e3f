package utils

import (
	"net/http"
	"strconv"
)

// GetPaginationParams parses page and limit query parameters from a request.
// ok is false when neither parameter is present, in which case callers return
// the full result set. Page defaults to 1, limit to 20, max 100.
func GetPaginationParams(r *http.Request) (page, limit int, ok bool) {
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")
	if pageStr == "" && limitStr == "" {
		return 0, 0, false
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, true
}

// PageWindow returns the [start, end) slice bounds for a page over n items.
func PageWindow(n, page, limit int) (start, end int) {
	start = (page - 1) * limit
	if start > n {
		start = n
	}
	end = start + limit
	if end > n {
		end = n
	}
	return start, end
}
