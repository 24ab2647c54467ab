package model

type Product struct {
	Base
	Name          string `json:"name"`
	Category      string `json:"category"`
	DailyRateCent int    `json:"daily_rate_cents"`
	TotalQuantity int    `json:"total_quantity"`

	// AvailableNow is derived from the reservation ledger at read time.
	// It is never stored: the ledger summation is the authority.
	AvailableNow int `json:"available_now"`
}
