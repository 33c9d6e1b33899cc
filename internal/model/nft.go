package model

import "time"

// NFTPrice is a single token's current floor/listing price.
type NFTPrice struct {
	TokenID string  `json:"tokenId"`
	Price   float64 `json:"price"`
}

// NFTPriceCache holds the last fetched price list for a collection. Each
// successful fetch replaces the entry wholesale; there is no expiry.
type NFTPriceCache struct {
	Collection  string     `json:"collection"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Prices      []NFTPrice `json:"prices"`
}
