package scheduleindex

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"go.mongodb.org/mongo-driver/bson"
)

const serviceDateFormat = "2006-01-02"

type mongoRecord struct {
	ServiceDate string `bson:"servicedate"`

	Record `bson:",inline"`
}

// MongoLoader hydrates an in-memory Index for a service date from the
// schedule_records and stops collections. Hydrated indexes are cached per
// date for the lifetime of the loader; the upstream importer replaces whole
// dates, never mutates them, so a cached index never goes stale mid-run.
type MongoLoader struct {
	mu      sync.Mutex
	indexes map[string]*MemoryIndex
}

func NewMongoLoader() *MongoLoader {
	return &MongoLoader{
		indexes: map[string]*MemoryIndex{},
	}
}

func (l *MongoLoader) Load(ctx context.Context, date time.Time) (Index, error) {
	serviceDate := date.Format(serviceDateFormat)

	l.mu.Lock()
	if index, exists := l.indexes[serviceDate]; exists {
		l.mu.Unlock()
		return index, nil
	}
	l.mu.Unlock()

	stops, err := loadStops(ctx)
	if err != nil {
		return nil, err
	}

	recordsCollection := database.GetCollection("schedule_records")
	cursor, err := recordsCollection.Find(ctx, bson.M{"servicedate": serviceDate})
	if err != nil {
		return nil, err
	}

	var records []Record
	for cursor.Next(ctx) {
		var record mongoRecord
		if err := cursor.Decode(&record); err != nil {
			log.Error().Err(err).Msg("Failed to decode schedule record")
			continue
		}

		records = append(records, record.Record)
	}

	index := NewMemoryIndex(stops, records)

	log.Info().
		Str("servicedate", serviceDate).
		Int("records", len(records)).
		Msg("Hydrated schedule index")

	l.mu.Lock()
	// First writer wins on a racing hydration of the same date
	if existing, exists := l.indexes[serviceDate]; exists {
		index = existing
	} else {
		l.indexes[serviceDate] = index
	}
	l.mu.Unlock()

	return index, nil
}

func loadStops(ctx context.Context) ([]htdf.Stop, error) {
	stopsCollection := database.GetCollection("stops")
	cursor, err := stopsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var stops []htdf.Stop
	for cursor.Next(ctx) {
		var stop htdf.Stop
		if err := cursor.Decode(&stop); err != nil {
			log.Error().Err(err).Msg("Failed to decode stop")
			continue
		}

		stops = append(stops, stop)
	}

	return stops, nil
}
