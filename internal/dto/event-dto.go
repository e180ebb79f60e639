package dto

type CreateEventRequest struct {
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Description *string  `json:"description"`
}

// UpdateEventRequest is a partial update. Nil means "leave unchanged".
// Status, from and till can never be set through an update.
type UpdateEventRequest struct {
	Address     *string  `json:"address"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Description *string  `json:"description"`
}
