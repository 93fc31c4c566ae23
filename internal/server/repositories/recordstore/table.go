// Package recordstore is the PostgreSQL implementation of records.Store.
// A single generic repository is parameterised by a Table describing the
// columns of one record type.
package recordstore

import (
	"database/sql"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// Table maps a record type onto a table. Columns, Args and Dest must list
// the same columns in the same order.
type Table[T any] struct {
	Name    string
	Columns []string
	Args    func(r *T) []any
	Dest    func(r *T) []any
	OrderBy string

	// Optional filter columns; an empty name disables the filter.
	OwnerColumn     string
	SenderColumn    string
	RecipientColumn string
	DateColumn      string
}

// nullText scans a nullable TEXT column into a plain string.
type nullText struct{ dst *string }

func (n nullText) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*n.dst = ns.String
	return nil
}

func text(dst *string) any { return nullText{dst: dst} }

// orNull stores the empty string as NULL.
func orNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var DrugTests = Table[models.DrugTest]{
	Name: "drug_tests",
	Columns: []string{
		"id", "user_id", "test_date", "test_type", "result",
		"administered_by", "notes", "image_url", "created_at",
	},
	Args: func(r *models.DrugTest) []any {
		return []any{r.ID, r.UserID, r.TestDate, r.TestType, r.Result,
			r.AdministeredBy, orNull(r.Notes), orNull(r.ImageURL), r.CreatedAt}
	},
	Dest: func(r *models.DrugTest) []any {
		return []any{&r.ID, &r.UserID, &r.TestDate, &r.TestType, &r.Result,
			&r.AdministeredBy, text(&r.Notes), text(&r.ImageURL), &r.CreatedAt}
	},
	OrderBy:     "test_date DESC, seq DESC",
	OwnerColumn: "user_id",
	DateColumn:  "test_date",
}

var Meetings = Table[models.Meeting]{
	Name: "meetings",
	Columns: []string{
		"id", "user_id", "meeting_date", "meeting_type", "attended",
		"recorded_by", "notes", "created_at",
	},
	Args: func(r *models.Meeting) []any {
		return []any{r.ID, r.UserID, r.MeetingDate, r.MeetingType, r.Attended,
			r.RecordedBy, orNull(r.Notes), r.CreatedAt}
	},
	Dest: func(r *models.Meeting) []any {
		return []any{&r.ID, &r.UserID, &r.MeetingDate, &r.MeetingType, &r.Attended,
			&r.RecordedBy, text(&r.Notes), &r.CreatedAt}
	},
	OrderBy:     "meeting_date DESC, seq DESC",
	OwnerColumn: "user_id",
	DateColumn:  "meeting_date",
}

var RentPayments = Table[models.RentPayment]{
	Name: "rent_payments",
	Columns: []string{
		"id", "user_id", "payment_date", "amount", "notes", "image_url",
		"status", "confirmed", "confirmed_by", "confirmation_date", "created_at",
	},
	Args: func(r *models.RentPayment) []any {
		return []any{r.ID, r.UserID, r.PaymentDate, r.Amount, orNull(r.Notes), orNull(r.ImageURL),
			string(r.Status), r.Confirmed, orNull(r.ConfirmedBy), r.ConfirmationDate, r.CreatedAt}
	},
	Dest: func(r *models.RentPayment) []any {
		return []any{&r.ID, &r.UserID, &r.PaymentDate, &r.Amount, text(&r.Notes), text(&r.ImageURL),
			&r.Status, &r.Confirmed, text(&r.ConfirmedBy), &r.ConfirmationDate, &r.CreatedAt}
	},
	OrderBy:     "payment_date DESC, seq DESC",
	OwnerColumn: "user_id",
	DateColumn:  "payment_date",
}

var Devotions = Table[models.Devotion]{
	Name: "devotions",
	Columns: []string{
		"id", "title", "content", "content_html", "scripture_reference", "author_id", "created_at",
	},
	Args: func(r *models.Devotion) []any {
		return []any{r.ID, r.Title, r.Content, r.ContentHTML, orNull(r.ScriptureReference), r.AuthorID, r.CreatedAt}
	},
	Dest: func(r *models.Devotion) []any {
		return []any{&r.ID, &r.Title, &r.Content, &r.ContentHTML, text(&r.ScriptureReference), &r.AuthorID, &r.CreatedAt}
	},
	OrderBy:    "created_at DESC, seq DESC",
	DateColumn: "created_at",
}

var ReadingMaterials = Table[models.ReadingMaterial]{
	Name: "reading_materials",
	Columns: []string{
		"id", "title", "author", "description", "category", "link", "added_by", "created_at",
	},
	Args: func(r *models.ReadingMaterial) []any {
		return []any{r.ID, r.Title, r.Author, orNull(r.Description), r.Category, orNull(r.Link), r.AddedBy, r.CreatedAt}
	},
	Dest: func(r *models.ReadingMaterial) []any {
		return []any{&r.ID, &r.Title, &r.Author, text(&r.Description), &r.Category, text(&r.Link), &r.AddedBy, &r.CreatedAt}
	},
	OrderBy:    "created_at DESC, seq DESC",
	DateColumn: "created_at",
}

var CalendarEvents = Table[models.CalendarEvent]{
	Name: "calendar_events",
	Columns: []string{
		"id", "title", "description", "event_date", "event_type", "location", "created_by", "created_at",
	},
	Args: func(r *models.CalendarEvent) []any {
		return []any{r.ID, r.Title, orNull(r.Description), r.EventDate, r.EventType, orNull(r.Location), r.CreatedBy, r.CreatedAt}
	},
	Dest: func(r *models.CalendarEvent) []any {
		return []any{&r.ID, &r.Title, text(&r.Description), &r.EventDate, &r.EventType, text(&r.Location), &r.CreatedBy, &r.CreatedAt}
	},
	OrderBy:    "event_date ASC, seq ASC",
	DateColumn: "event_date",
}

var Messages = Table[models.Message]{
	Name:    "messages",
	Columns: []string{"id", "sender_id", "recipient_id", "content", "created_at"},
	Args: func(r *models.Message) []any {
		return []any{r.ID, r.SenderID, r.RecipientID, r.Content, r.CreatedAt}
	},
	Dest: func(r *models.Message) []any {
		return []any{&r.ID, &r.SenderID, &r.RecipientID, &r.Content, &r.CreatedAt}
	},
	OrderBy:         "created_at ASC, seq ASC",
	SenderColumn:    "sender_id",
	RecipientColumn: "recipient_id",
	DateColumn:      "created_at",
}
