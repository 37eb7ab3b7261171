package dataimporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// trailDocument mirrors the upstream trail export, produced by the offline
// spatial join of trail geometry against the stop register.
type trailDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	DistanceKm     float64 `json:"distance_km"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	ElevationLossM float64 `json:"elevation_loss_m"`
	MaxElevationM  float64 `json:"max_elevation_m"`
	MinElevationM  float64 `json:"min_elevation_m"`

	Difficulty string   `json:"difficulty"`
	Colours    []string `json:"colours"`
	Area       string   `json:"area"`

	IsLoop bool `json:"is_loop"`

	RecommendedSeasons []string `json:"recommended_seasons"`
	SeasonWarnings     []string `json:"season_warnings"`

	AccessPoints []trailAccessPoint `json:"access_points"`
}

type trailAccessPoint struct {
	StopRef  string `json:"stop_ref"`
	StopName string `json:"stop_name"`

	WalkDistanceM float64 `json:"walk_distance_m"`

	EntryLongitude float64 `json:"entry_lon"`
	EntryLatitude  float64 `json:"entry_lat"`

	StopLongitude float64 `json:"stop_lon"`
	StopLatitude  float64 `json:"stop_lat"`

	TrailOffsetKm float64 `json:"trail_offset_km"`
}

// ImportTrails upserts the trails collection from a JSON export. Trails with
// unordered access points are rejected at import time so the planner can rely
// on the ordering.
func ImportTrails(reader io.Reader, datasource string) error {
	var documents []trailDocument
	if err := json.NewDecoder(reader).Decode(&documents); err != nil {
		return err
	}

	trailsCollection := database.GetCollection("trails")

	var updateOperations []mongo.WriteModel
	for _, document := range documents {
		trail, err := convertTrail(document, datasource)
		if err != nil {
			return err
		}

		bsonRep, _ := bson.Marshal(bson.M{"$set": trail})

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": trail.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		updateOperations = append(updateOperations, updateModel)
	}

	if len(updateOperations) > 0 {
		_, err := trailsCollection.BulkWrite(context.Background(), updateOperations, &options.BulkWriteOptions{})
		if err != nil {
			return err
		}
	}

	log.Info().Int("trails", len(updateOperations)).Msg("Imported trails")

	return nil
}

func convertTrail(document trailDocument, datasource string) (htdf.Trail, error) {
	var trail htdf.Trail
	if err := copier.Copy(&trail, &document); err != nil {
		return htdf.Trail{}, err
	}

	trail.PrimaryIdentifier = fmt.Sprintf("shvilbus-trail-%s", document.ID)
	trail.DataSource = datasource

	trail.AccessPoints = make([]htdf.AccessPoint, 0, len(document.AccessPoints))
	for _, accessPoint := range document.AccessPoints {
		trailEntry := htdf.Location{
			Type:        "Point",
			Coordinates: []float64{accessPoint.EntryLongitude, accessPoint.EntryLatitude},
		}

		// Some exports carry the stop coordinates instead of a precomputed
		// walk distance; fall back to the great-circle distance
		walkDistance := accessPoint.WalkDistanceM
		if walkDistance == 0 && (accessPoint.StopLongitude != 0 || accessPoint.StopLatitude != 0) {
			walkDistance = trailEntry.DistanceFrom(htdf.Location{
				Type:        "Point",
				Coordinates: []float64{accessPoint.StopLongitude, accessPoint.StopLatitude},
			})
		}

		trail.AccessPoints = append(trail.AccessPoints, htdf.AccessPoint{
			StopRef:  accessPoint.StopRef,
			StopName: accessPoint.StopName,

			WalkDistanceM: walkDistance,

			TrailEntry: trailEntry,

			TrailOffsetKm: accessPoint.TrailOffsetKm,
		})
	}

	if _, err := trail.OrderedAccessPoints(); err != nil {
		return htdf.Trail{}, err
	}

	return trail, nil
}
