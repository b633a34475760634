package utils

import (
	"fmt"
	"math"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePage applies the default page and limit and rejects values out of range.
func NormalizePage(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = DefaultPage
	}

	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = DefaultLimit
	}
	if *limit > MaxLimit {
		errs.Add("limit", fmt.Sprintf("limit must not exceed %d", MaxLimit))
	}

	return errs
}

// Offset converts a 1-based page into a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Showing renders the "21-40 of 150" line used by list responses.
func Showing(page, limit int, total int64) string {
	if total == 0 {
		return "0 of 0"
	}
	from := (page-1)*limit + 1
	to := min(page*limit, int(total))
	if from > int(total) {
		return fmt.Sprintf("0 of %d", total)
	}
	return fmt.Sprintf("%d-%d of %d", from, to, total)
}
