package dataimporter

import (
	"context"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stopRow struct {
	StopRef string `csv:"stop_ref"`
	Name    string `csv:"name"`

	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}

// ImportStops upserts the stops collection from a CSV export.
func ImportStops(reader io.Reader, datasource string) error {
	var rows []stopRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return err
	}

	stopsCollection := database.GetCollection("stops")

	var updateOperations []mongo.WriteModel
	for _, row := range rows {
		stop := htdf.Stop{
			PrimaryIdentifier: row.StopRef,
			PrimaryName:       row.Name,
			DataSource:        datasource,
			Location: &htdf.Location{
				Type:        "Point",
				Coordinates: []float64{row.Longitude, row.Latitude},
			},
		}

		bsonRep, _ := bson.Marshal(bson.M{"$set": stop})

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": stop.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		updateOperations = append(updateOperations, updateModel)
	}

	if len(updateOperations) > 0 {
		_, err := stopsCollection.BulkWrite(context.Background(), updateOperations, &options.BulkWriteOptions{})
		if err != nil {
			return err
		}
	}

	log.Info().Int("stops", len(updateOperations)).Msg("Imported stops")

	return nil
}
