package records

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/markdown"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return common.Invalid(field, "is required")
	}
	return nil
}

func requiredTime(field string, v models.Timestamp) error {
	if v.IsZero() {
		return common.Invalid(field, "is required")
	}
	return nil
}

func oneOf(field, v string, allowed []string) error {
	if err := required(field, v); err != nil {
		return err
	}
	if !slices.Contains(allowed, v) {
		return common.Invalid(field, "must be one of "+strings.Join(allowed, ", "))
	}
	return nil
}

func optionalURL(field, v string) error {
	if v == "" || strings.HasPrefix(v, "/api/files/") {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return common.Invalid(field, "must be an http(s) URL")
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

var DrugTests = Schema[models.DrugTest]{
	Kind:       models.KindDrugTest,
	Visibility: VisibleOwner,
	Stamp: func(r *models.DrugTest, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.AdministeredBy = orDefault(r.AdministeredBy, actor.Name)
	},
	Validate: func(r *models.DrugTest) error {
		return firstErr(
			required("user_id", r.UserID),
			requiredTime("test_date", r.TestDate),
			oneOf("test_type", r.TestType, models.TestTypes),
			oneOf("result", r.Result, models.TestResults),
			required("administered_by", r.AdministeredBy),
			optionalURL("image_url", r.ImageURL),
		)
	},
}

var Meetings = Schema[models.Meeting]{
	Kind:       models.KindMeeting,
	Visibility: VisibleOwner,
	Stamp: func(r *models.Meeting, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.RecordedBy = orDefault(r.RecordedBy, actor.Name)
	},
	Validate: func(r *models.Meeting) error {
		return firstErr(
			required("user_id", r.UserID),
			requiredTime("meeting_date", r.MeetingDate),
			oneOf("meeting_type", r.MeetingType, models.MeetingTypes),
			required("recorded_by", r.RecordedBy),
		)
	},
}

// RentPayments always start pending and belong to the submitting user.
var RentPayments = Schema[models.RentPayment]{
	Kind:       models.KindRentPayment,
	Visibility: VisibleOwner,
	Stamp: func(r *models.RentPayment, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.UserID = actor.ID
		r.Status = models.PaymentPending
		r.Confirmed = false
		r.ConfirmedBy = ""
		r.ConfirmationDate = nil
		r.Mismatched = false
	},
	Validate: func(r *models.RentPayment) error {
		if err := requiredTime("payment_date", r.PaymentDate); err != nil {
			return err
		}
		if r.Amount <= 0 {
			return common.Invalid("amount", "must be positive")
		}
		return optionalURL("image_url", r.ImageURL)
	},
}

var Devotions = Schema[models.Devotion]{
	Kind:       models.KindDevotion,
	Visibility: VisiblePublic,
	Stamp: func(r *models.Devotion, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.AuthorID = actor.ID
		r.ContentHTML = markdown.Render(r.Content)
	},
	Validate: func(r *models.Devotion) error {
		return firstErr(
			required("title", r.Title),
			required("content", r.Content),
		)
	},
}

var ReadingMaterials = Schema[models.ReadingMaterial]{
	Kind:       models.KindReadingMaterial,
	Visibility: VisiblePublic,
	Stamp: func(r *models.ReadingMaterial, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.AddedBy = actor.ID
	},
	Validate: func(r *models.ReadingMaterial) error {
		return firstErr(
			required("title", r.Title),
			required("author", r.Author),
			oneOf("category", r.Category, models.ReadingCategories),
			optionalURL("link", r.Link),
		)
	},
}

var CalendarEvents = Schema[models.CalendarEvent]{
	Kind:       models.KindCalendarEvent,
	Visibility: VisiblePublic,
	Stamp: func(r *models.CalendarEvent, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.CreatedBy = actor.ID
	},
	Validate: func(r *models.CalendarEvent) error {
		return firstErr(
			required("title", r.Title),
			requiredTime("event_date", r.EventDate),
			oneOf("event_type", r.EventType, models.EventTypes),
		)
	},
}

// Messages are trimmed before validation; an empty recipient is a broadcast.
var Messages = Schema[models.Message]{
	Kind:       models.KindMessage,
	Visibility: VisibleParticipant,
	Stamp: func(r *models.Message, actor models.User, id string, now time.Time) {
		r.ID = id
		r.CreatedAt = now
		r.SenderID = actor.ID
		r.Content = strings.TrimSpace(r.Content)
		if r.RecipientID != nil && strings.TrimSpace(*r.RecipientID) == "" {
			r.RecipientID = nil
		}
	},
	Validate: func(r *models.Message) error {
		return required("content", r.Content)
	},
}
