package domain

import "time"

type Category string

const (
	CategoryElectronics      Category = "Electronics"
	CategoryServices         Category = "Services"
	CategoryHousing          Category = "Housing"
	CategoryEvents           Category = "Events"
	CategoryForSale          Category = "For Sale"
	CategoryPetsAnimals      Category = "Pets & Animals"
	CategoryHouseGarden      Category = "House & Garden"
	CategoryClothes          Category = "Clothes"
	CategoryCollectiblesArt  Category = "Collectibles & Art"
	CategoryBooksMoviesMusic Category = "Books, Movies & Music"
	CategoryVehicles         Category = "Vehicles"
	CategorySportsOutdoors   Category = "Sports & Outdoors"
	CategoryToys             Category = "Toys"
	CategoryHobbies          Category = "Hobbies"
	CategoryBabyKids         Category = "Baby & Kids"
	CategoryHealthBeauty     Category = "Health & Beauty"
	CategoryOther            Category = "Other"
)

// CategoryAll is the wildcard accepted by the listing filter, not a value a
// listing itself may carry.
const CategoryAll Category = "all"

var Categories = []Category{
	CategoryElectronics, CategoryServices, CategoryHousing, CategoryEvents,
	CategoryForSale, CategoryPetsAnimals, CategoryHouseGarden, CategoryClothes,
	CategoryCollectiblesArt, CategoryBooksMoviesMusic, CategoryVehicles,
	CategorySportsOutdoors, CategoryToys, CategoryHobbies, CategoryBabyKids,
	CategoryHealthBeauty, CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MinListingImages = 1
	MaxListingImages = 5
	MaxListingTags   = 10

	MinTitleLen       = 5
	MaxTitleLen       = 100
	MinDescriptionLen = 20
	MaxDescriptionLen = 5000
)

// Listing is a classified post owned by exactly one author. AuthorID is set
// once at creation from the verified caller identity and is the sole
// authorization anchor for every mutation.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       *float64 // nil means "contact for price"
	Category    Category
	Location    string
	Tags        []string
	ImageURLs   []string
	ImageHint   string
	AuthorID    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// UserProfile mirrors the identity provider's user record. ID equals the
// provider's uid and Email is always re-derived from the verified identity,
// never taken from client input.
type UserProfile struct {
	ID          string
	Email       string
	Name        string
	Location    string
	PhoneNumber string
}

// Identity is the result of verifying a bearer credential.
type Identity struct {
	UID   string
	Email string
	Name  string
}
