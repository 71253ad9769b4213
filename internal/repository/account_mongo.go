package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bocattovalley/bocatto-server/internal/model"
)

// MongoAccountRepo stores accounts as documents of one collection.
type MongoAccountRepo struct{ Coll *mongo.Collection }

func NewMongoAccountRepo(coll *mongo.Collection) *MongoAccountRepo {
	return &MongoAccountRepo{Coll: coll}
}

// FindByEmail fetches the first document with email.
func (r *MongoAccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.Coll.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// Insert adds one document.
func (r *MongoAccountRepo) Insert(ctx context.Context, a model.Account) error {
	_, err := r.Coll.InsertOne(ctx, a)
	return err
}
