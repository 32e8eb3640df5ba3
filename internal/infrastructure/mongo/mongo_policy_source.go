package mongo

import (
	"context"
	"fmt"

	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// commissionPolicyDocID is the fixed ID of the single active policy document.
const commissionPolicyDocID = "current"

type commissionPolicyDocument struct {
	ID   string `bson:"_id"`
	Rate string `bson:"rate"`
}

// MongoPolicySource loads the commission policy from the commission_policy
// collection. A missing document falls back to the default rate so a fresh
// deployment works without seeding.
type MongoPolicySource struct {
	collection *mongo.Collection
}

// NewMongoPolicySource creates a new MongoDB commission policy source
func NewMongoPolicySource(database *mongo.Database) *MongoPolicySource {
	return &MongoPolicySource{
		collection: database.Collection("commission_policy"),
	}
}

// GetCurrentPolicy implements policy.Source.
func (s *MongoPolicySource) GetCurrentPolicy(ctx context.Context) (policy.CommissionPolicy, error) {
	var doc commissionPolicyDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": commissionPolicyDocID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return policy.NewCommissionPolicy(policy.DefaultCommissionRate)
	}
	if err != nil {
		return policy.CommissionPolicy{}, errors.NewStorageUnavailableError(fmt.Sprintf("failed to load commission policy: %v", err))
	}

	rate, err := decimal.NewFromString(doc.Rate)
	if err != nil {
		return policy.CommissionPolicy{}, errors.NewInternalError(fmt.Sprintf("stored commission rate %q is not a decimal: %v", doc.Rate, err))
	}
	return policy.NewCommissionPolicy(rate)
}
