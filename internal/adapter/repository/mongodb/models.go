package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localloop/classifieds-service/internal/classified/domain"
)

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       *float64           `bson:"price,omitempty"`
	Category    string             `bson:"category"`
	Location    string             `bson:"location"`
	Tags        []string           `bson:"tags"`
	ImageURLs   []string           `bson:"image_urls"`
	ImageHint   string             `bson:"image_hint"`
	AuthorID    string             `bson:"author_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   *time.Time         `bson:"updated_at,omitempty"`
}

// The profile document id equals the identity provider's uid, so no ObjectID
// is generated for it.
type profileDocument struct {
	ID          string `bson:"_id"`
	Email       string `bson:"email"`
	Name        string `bson:"name,omitempty"`
	Location    string `bson:"location,omitempty"`
	PhoneNumber string `bson:"phone_number,omitempty"`
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing id %q: %w", l.ID, err)
		}
	}
	return &listingDocument{
		ID:          docID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    string(l.Category),
		Location:    l.Location,
		Tags:        l.Tags,
		ImageURLs:   l.ImageURLs,
		ImageHint:   l.ImageHint,
		AuthorID:    l.AuthorID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func toDomainListing(doc *listingDocument) *domain.Listing {
	return &domain.Listing{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Price:       doc.Price,
		Category:    domain.Category(doc.Category),
		Location:    doc.Location,
		Tags:        doc.Tags,
		ImageURLs:   doc.ImageURLs,
		ImageHint:   doc.ImageHint,
		AuthorID:    doc.AuthorID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func toProfileDocument(p *domain.UserProfile) *profileDocument {
	return &profileDocument{
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Location:    p.Location,
		PhoneNumber: p.PhoneNumber,
	}
}

func toDomainProfile(doc *profileDocument) *domain.UserProfile {
	return &domain.UserProfile{
		ID:          doc.ID,
		Email:       doc.Email,
		Name:        doc.Name,
		Location:    doc.Location,
		PhoneNumber: doc.PhoneNumber,
	}
}
