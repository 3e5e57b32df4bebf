package discount

import (
	"time"

	"github.com/simp-lee/learnhub/internal/domain"
)

// DiscountRequest is the body of create and update. Dates accept either
// 2006-01-02 or RFC 3339.
type DiscountRequest struct {
	Name      string   `json:"name" form:"name" binding:"required,max=255"`
	Type      string   `json:"type" form:"type" binding:"required,oneof=percentage fixed"`
	Value     *float64 `json:"value" form:"value" binding:"required"`
	StartDate string   `json:"start_date" form:"start_date" binding:"required"`
	EndDate   string   `json:"end_date" form:"end_date" binding:"required"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError(field + " must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

// toInput converts the request into service input.
func (r DiscountRequest) toInput() (domain.DiscountInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return domain.DiscountInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return domain.DiscountInput{}, err
	}
	return domain.DiscountInput{
		Name:      r.Name,
		Type:      r.Type,
		Value:     *r.Value,
		StartDate: start,
		EndDate:   end,
	}, nil
}
