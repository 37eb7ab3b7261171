package dataimporter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"go.mongodb.org/mongo-driver/bson"
)

// scheduleRow is one line of a precomputed schedule export: a single call of
// a trip at a stop on a service date.
type scheduleRow struct {
	ServiceDate string `csv:"service_date"`

	TripRef  string `csv:"trip_ref"`
	Line     string `csv:"line"`
	Operator string `csv:"operator"`

	StopRef string `csv:"stop_ref"`

	Arrival   string `csv:"arrival"`
	Departure string `csv:"departure"`

	Sequence int `csv:"sequence"`
}

// ImportSchedule replaces the schedule_records documents for every service
// date present in the CSV. Whole dates are swapped, never patched, so a
// hydrated index for an untouched date stays valid.
func ImportSchedule(reader io.Reader) error {
	var rows []scheduleRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return err
	}

	type storedRecord struct {
		ServiceDate string `bson:"servicedate"`

		TripRef  string `bson:"tripref"`
		Line     string `bson:"line"`
		Operator string `bson:"operator"`

		StopRef string `bson:"stopref"`

		Arrival   htdf.ClockTime `bson:"arrival"`
		Departure htdf.ClockTime `bson:"departure"`

		Sequence int `bson:"sequence"`
	}

	recordsByDate := map[string][]interface{}{}
	for index, row := range rows {
		if _, err := time.Parse("2006-01-02", row.ServiceDate); err != nil {
			return fmt.Errorf("row %d: invalid service date %q", index+1, row.ServiceDate)
		}

		arrival, err := htdf.ParseClockTime(row.Arrival)
		if err != nil {
			return fmt.Errorf("row %d: %w", index+1, err)
		}
		departure, err := htdf.ParseClockTime(row.Departure)
		if err != nil {
			return fmt.Errorf("row %d: %w", index+1, err)
		}

		recordsByDate[row.ServiceDate] = append(recordsByDate[row.ServiceDate], storedRecord{
			ServiceDate: row.ServiceDate,

			TripRef:  row.TripRef,
			Line:     row.Line,
			Operator: row.Operator,

			StopRef: row.StopRef,

			Arrival:   arrival,
			Departure: departure,

			Sequence: row.Sequence,
		})
	}

	recordsCollection := database.GetCollection("schedule_records")

	for serviceDate, records := range recordsByDate {
		if _, err := recordsCollection.DeleteMany(context.Background(), bson.M{"servicedate": serviceDate}); err != nil {
			return err
		}

		if _, err := recordsCollection.InsertMany(context.Background(), records); err != nil {
			return err
		}

		log.Info().
			Str("servicedate", serviceDate).
			Int("records", len(records)).
			Msg("Imported schedule records")
	}

	return nil
}
