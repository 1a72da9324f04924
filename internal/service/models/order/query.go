package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}
