package domain

// PlaceSuggestion is a minimal search hit from the place-lookup service.
type PlaceSuggestion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PlaceDetails is the full record for a single place.
// Coordinates is nil when the provider returned no location.
type PlaceDetails struct {
	ID               string
	Name             string
	FormattedAddress string
	Coordinates      *Coordinates
	Types            []string
	PhotoRef         *string
	Rating           *float64
}
