// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package reservation

import (
	"context"
	"errors"
	"time"

	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
)

// Searcher is the part of Client the job depends on.
type Searcher interface {
	Search(ctx context.Context, from, to time.Time) ([]Record, error)
}

// JobConfig configures a Job.
type JobConfig struct {
	HotelID   string
	Locale    Locale
	DaysAhead int
	Location  *time.Location
	Now       func() time.Time
}

// Job is the per-cycle work of the reservation coordinator.
type Job struct {
	searcher  Searcher
	hotelID   string
	locale    Locale
	daysAhead int
	loc       *time.Location
	now       func() time.Time
}

// NewJob creates the job.
func NewJob(s Searcher, cfg JobConfig) *Job {
	if cfg.DaysAhead <= 0 {
		cfg.DaysAhead = DefaultDaysAhead
	}
	if cfg.Locale == "" {
		cfg.Locale = LocaleEN
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Job{
		searcher:  s,
		hotelID:   cfg.HotelID,
		locale:    cfg.Locale,
		daysAhead: cfg.DaysAhead,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
}

// Run performs Fetch and Merge.
func (j *Job) Run(ctx context.Context) (*Snapshot, error) {
	records, err := j.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return j.Merge(ctx, records)
}

// Fetch searches [today, today+daysAhead]. A transport failure is returned so
// the previous snapshot stays published; an unparseable body yields no
// records.
func (j *Job) Fetch(ctx context.Context) ([]Record, error) {
	logger := xlog.WithComponentFromContext(ctx, "reservation")

	from := j.now().In(j.loc)
	to := from.AddDate(0, 0, j.daysAhead)

	records, err := j.searcher.Search(ctx, from, to)
	var pe *ParseError
	switch {
	case errors.As(err, &pe):
		logger.Warn().Err(err).
			Str(xlog.FieldEvent, "reservation.parse_failed").
			Str(xlog.FieldHotelID, j.hotelID).
			Msg("reservation response is not valid XML, publishing no reservations")
		return nil, nil
	case err != nil:
		logger.Error().Err(err).
			Str(xlog.FieldEvent, "reservation.fetch_failed").
			Str(xlog.FieldHotelID, j.hotelID).
			Msg("reservation search failed")
		return nil, err
	}

	logger.Info().
		Str(xlog.FieldEvent, "reservation.fetched").
		Str(xlog.FieldHotelID, j.hotelID).
		Int(xlog.FieldCount, len(records)).
		Msg("reservation records received")
	return records, nil
}

// Merge groups the records by reservation id.
func (j *Job) Merge(ctx context.Context, records []Record) (*Snapshot, error) {
	snap := Aggregate(records, j.hotelID, j.locale, j.now(), j.loc)
	metrics.SetReservations(snap.Len())

	groups := 0
	for _, e := range snap.Entries {
		if e.IsGroup {
			groups++
		}
	}
	logger := xlog.WithComponentFromContext(ctx, "reservation")
	logger.Info().
		Str(xlog.FieldEvent, "reservation.merged").
		Str(xlog.FieldHotelID, j.hotelID).
		Int("records", len(records)).
		Int("reservations", snap.Len()).
		Int("groups", groups).
		Msg("reservation snapshot assembled")
	return snap, nil
}
