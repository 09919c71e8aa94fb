package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/platform/logger"
)

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{collection: db.Collection("listings"), logger: log}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	listing.ID = oid.Hex()
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"category":    doc.Category,
		"location":    doc.Location,
		"tags":        doc.Tags,
		"image_urls":  doc.ImageURLs,
		"image_hint":  doc.ImageHint,
		"updated_at":  doc.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, doc.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

// FindAll reads newest-first. If the ordered query fails (for instance a
// missing index on created_at) it retries unordered and reports the degraded
// ordering instead of failing the whole read.
func (r *ListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, bool, error) {
	sorted := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, sorted)
	if err == nil {
		listings, derr := decodeListings(ctx, cursor)
		return listings, false, derr
	}

	r.logger.Warn("ListingRepository.FindAll: ordered query failed, falling back to unordered read", "error", err.Error())
	cursor, err = r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, false, err
	}
	listings, err := decodeListings(ctx, cursor)
	if err != nil {
		return nil, false, err
	}
	return listings, true, nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Listing, error) {
	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	listings := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, toDomainListing(&docs[i]))
	}
	return listings, nil
}
