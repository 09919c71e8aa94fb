package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localloop/classifieds-service/internal/classified/domain"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{collection: db.Collection("users")}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	var doc profileDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return toDomainProfile(&doc), nil
}

// Upsert writes only the submitted fields so a partial update never clears
// the rest of the document.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	doc := toProfileDocument(profile)
	set := bson.M{"email": doc.Email}
	if doc.Name != "" {
		set["name"] = doc.Name
	}
	if doc.Location != "" {
		set["location"] = doc.Location
	}
	if doc.PhoneNumber != "" {
		set["phone_number"] = doc.PhoneNumber
	}

	_, err := r.collection.UpdateByID(ctx, doc.ID,
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}
