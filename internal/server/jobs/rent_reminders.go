package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/recordstore"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// RentReminders messages every participant who has not paid rent this month
// once the configured due day has arrived. Each participant is reminded at
// most once per month.
type RentReminders struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	events events.Publisher
	log    logging.Logger
	now    func() time.Time
}

func NewRentReminders(db *sql.DB, rm repomanager.RepositoryManager, pub events.Publisher, log logging.Logger) *RentReminders {
	return &RentReminders{db: db, rm: rm, events: pub, log: log, now: time.Now}
}

// DueDay clamps day to the number of days in the month containing t.
func DueDay(t time.Time, day int) int {
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

func (j *RentReminders) Run(ctx context.Context) error {
	now := j.now().UTC()

	s, err := j.rm.Settings(j.db).Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if now.Day() < DueDay(now, s.RentDueDay) {
		return nil
	}
	if s.UpdatedByID == "" {
		j.log.Debug(ctx, "rent reminders skipped: settings never saved by an admin")
		return nil
	}

	sender, err := j.rm.Users(j.db).Get(ctx, s.UpdatedByID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			j.log.Warn(ctx, "rent reminders skipped: settings author no longer exists", "user_id", s.UpdatedByID)
			return nil
		}
		return fmt.Errorf("load reminder sender: %w", err)
	}

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	period := from.Format("2006-01")

	due, err := j.rm.Reminders(j.db).Due(ctx, period, from, to)
	if err != nil {
		return fmt.Errorf("find due participants: %w", err)
	}

	var sent int
	for _, u := range due {
		msg, ok, err := j.remind(ctx, *sender, u, period, reminderText(s))
		if err != nil {
			return fmt.Errorf("remind %s: %w", u.ID, err)
		}
		if !ok {
			continue
		}
		sent++
		j.events.Publish(ctx, events.Event{
			Kind: models.KindMessage, Action: events.ActionCreated,
			ID: msg.ID, ActorID: sender.ID, At: msg.CreatedAt, Data: msg,
		})
	}

	if sent > 0 {
		j.log.Info(ctx, "rent reminders sent", "period", period, "count", sent)
	}
	return nil
}

// remind marks the period and writes the message in one transaction, so a
// crash between the two neither loses nor duplicates a reminder.
func (j *RentReminders) remind(ctx context.Context, sender, to models.User, period, text string) (models.Message, bool, error) {
	var (
		msg   models.Message
		fresh bool
	)
	err := dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		fresh, err = j.rm.Reminders(tx).MarkSent(ctx, to.ID, period)
		if err != nil || !fresh {
			return err
		}

		m := records.NewManager(records.Messages,
			recordstore.NewPostgresRepository(tx, recordstore.Messages),
			records.WithClock[models.Message](j.now))
		recipient := to.ID
		msg, err = m.Create(ctx, models.Message{Content: text, RecipientID: &recipient}, sender)
		return err
	})
	return msg, fresh, err
}

func reminderText(s *models.Settings) string {
	if s.ExpectedRentAmount > 0 {
		return fmt.Sprintf("Reminder: rent of $%s is due (day %d of the month). Please submit your payment.",
			s.ExpectedRentAmount, s.RentDueDay)
	}
	return fmt.Sprintf("Reminder: rent is due (day %d of the month). Please submit your payment.", s.RentDueDay)
}
