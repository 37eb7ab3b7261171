package trailindex

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoRepository struct {
}

func NewMongoRepository() *MongoRepository {
	return &MongoRepository{}
}

func (r *MongoRepository) Trails(ctx context.Context) ([]htdf.Trail, error) {
	trailsCollection := database.GetCollection("trails")

	cursor, err := trailsCollection.Find(ctx, bson.M{"accesspoints.0": bson.M{"$exists": true}})
	if err != nil {
		return nil, err
	}

	var trails []htdf.Trail
	for cursor.Next(ctx) {
		var trail htdf.Trail
		if err := cursor.Decode(&trail); err != nil {
			log.Error().Err(err).Msg("Failed to decode trail")
			continue
		}

		trails = append(trails, trail)
	}

	return trails, nil
}

func (r *MongoRepository) Trail(ctx context.Context, trailRef string) (*htdf.Trail, error) {
	trailsCollection := database.GetCollection("trails")

	var trail *htdf.Trail
	err := trailsCollection.FindOne(ctx, bson.M{"primaryidentifier": trailRef}).Decode(&trail)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return trail, nil
}
