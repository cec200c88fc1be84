package catalog

import "errors"

var ErrNotFound = errors.New("document not found")

// Collection names are the MongoDB collection names of the deployed database.
type Collection string

const (
	Packages       Collection = "allPackages"
	TourGuides     Collection = "tourGuides"
	TouristStories Collection = "touristStory"
	Wishlists      Collection = "wishlist"
	Bookings       Collection = "bookings"
)

var Collections = []Collection{Packages, TourGuides, TouristStories, Wishlists, Bookings}

// Document is an opaque resource record. The store assigns "_id"; "email"
// marks the owner of wishlist and booking entries.
type Document map[string]any

func (d Document) Owner() string {
	email, _ := d["email"].(string)
	return email
}

// Filter narrows Find. Zero values mean no constraint.
type Filter struct {
	Email string
	Limit int
}
