package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createStopsIndexes()
	createScheduleIndexes()
	createTrailsIndexes()
}

func createStopsIndexes() {
	stopsCollection := GetCollection("stops")
	stopsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
		},
	}

	opts := options.CreateIndexes()
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), stopsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createScheduleIndexes() {
	recordsCollection := GetCollection("schedule_records")
	recordsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "servicedate", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "servicedate", Value: 1}, {Key: "stopref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tripref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := recordsCollection.Indexes().CreateMany(context.Background(), recordsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createTrailsIndexes() {
	trailsCollection := GetCollection("trails")
	trailsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "area", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := trailsCollection.Indexes().CreateMany(context.Background(), trailsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
