package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/metrics"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/recordstore"
)

// RecordManagers holds one lifecycle manager per record collection.
type RecordManagers struct {
	DrugTests        *records.Manager[models.DrugTest]
	Meetings         *records.Manager[models.Meeting]
	RentPayments     *records.Manager[models.RentPayment]
	Devotions        *records.Manager[models.Devotion]
	ReadingMaterials *records.Manager[models.ReadingMaterial]
	CalendarEvents   *records.Manager[models.CalendarEvent]
	Messages         *records.Manager[models.Message]
}

// NewRecordManagers builds Postgres-backed managers that count and publish
// every created record.
func NewRecordManagers(db *sql.DB, pub events.Publisher) *RecordManagers {
	return &RecordManagers{
		DrugTests: records.NewManager(records.DrugTests,
			recordstore.NewPostgresRepository(db, recordstore.DrugTests),
			records.WithHook(announce(pub, models.KindDrugTest, func(r models.DrugTest) (string, string, time.Time) {
				return r.ID, "", r.CreatedAt
			}))),
		Meetings: records.NewManager(records.Meetings,
			recordstore.NewPostgresRepository(db, recordstore.Meetings),
			records.WithHook(announce(pub, models.KindMeeting, func(r models.Meeting) (string, string, time.Time) {
				return r.ID, "", r.CreatedAt
			}))),
		RentPayments: records.NewManager(records.RentPayments,
			recordstore.NewPostgresRepository(db, recordstore.RentPayments),
			records.WithHook(announce(pub, models.KindRentPayment, func(r models.RentPayment) (string, string, time.Time) {
				return r.ID, r.UserID, r.CreatedAt
			}))),
		Devotions: records.NewManager(records.Devotions,
			recordstore.NewPostgresRepository(db, recordstore.Devotions),
			records.WithHook(announce(pub, models.KindDevotion, func(r models.Devotion) (string, string, time.Time) {
				return r.ID, r.AuthorID, r.CreatedAt
			}))),
		ReadingMaterials: records.NewManager(records.ReadingMaterials,
			recordstore.NewPostgresRepository(db, recordstore.ReadingMaterials),
			records.WithHook(announce(pub, models.KindReadingMaterial, func(r models.ReadingMaterial) (string, string, time.Time) {
				return r.ID, r.AddedBy, r.CreatedAt
			}))),
		CalendarEvents: records.NewManager(records.CalendarEvents,
			recordstore.NewPostgresRepository(db, recordstore.CalendarEvents),
			records.WithHook(announce(pub, models.KindCalendarEvent, func(r models.CalendarEvent) (string, string, time.Time) {
				return r.ID, r.CreatedBy, r.CreatedAt
			}))),
		Messages: records.NewManager(records.Messages,
			recordstore.NewPostgresRepository(db, recordstore.Messages),
			records.WithHook(announce(pub, models.KindMessage, func(r models.Message) (string, string, time.Time) {
				return r.ID, r.SenderID, r.CreatedAt
			}))),
	}
}

// announce returns a create hook that bumps the per-kind counter and
// publishes a created event.
func announce[T any](pub events.Publisher, kind models.Kind, describe func(T) (id, actorID string, at time.Time)) records.Hook[T] {
	return func(ctx context.Context, rec T) {
		metrics.RecordsCreated.WithLabelValues(string(kind)).Inc()
		id, actorID, at := describe(rec)
		pub.Publish(ctx, events.Event{
			Kind: kind, Action: events.ActionCreated,
			ID: id, ActorID: actorID, At: at, Data: rec,
		})
	}
}

// ReadingGroup is one category of reading materials.
type ReadingGroup struct {
	Category  string
	Materials []models.ReadingMaterial
}

// ReadingGroups marshals as a JSON object keyed by category, in the fixed
// category display order.
type ReadingGroups []ReadingGroup

func (g ReadingGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(grp.Category)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(grp.Materials)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GroupReadingMaterials buckets ms by category. Empty categories are
// omitted; unknown categories follow the known ones in first-seen order.
func GroupReadingMaterials(ms []models.ReadingMaterial) ReadingGroups {
	byCat := make(map[string][]models.ReadingMaterial)
	var extra []string
	for _, m := range ms {
		if _, seen := byCat[m.Category]; !seen && !isKnownCategory(m.Category) {
			extra = append(extra, m.Category)
		}
		byCat[m.Category] = append(byCat[m.Category], m)
	}

	out := ReadingGroups{}
	for _, c := range append(append([]string{}, models.ReadingCategories...), extra...) {
		if len(byCat[c]) > 0 {
			out = append(out, ReadingGroup{Category: c, Materials: byCat[c]})
		}
	}
	return out
}

func isKnownCategory(c string) bool {
	for _, k := range models.ReadingCategories {
		if k == c {
			return true
		}
	}
	return false
}
