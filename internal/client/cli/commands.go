package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/client/client"
	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
)

// now is a test seam for default dates.
var now = time.Now

func can(kind models.Kind) func(models.User) bool {
	return func(u models.User) bool { return policy.CanMutate(u.Role, kind) }
}

func staff(u models.User) bool { return policy.CanListUsers(u.Role) }

func (a *App) commands() []command {
	return []command{
		{name: "login", help: "sign in with an auth provider session id", anonymous: true, run: a.login},
		{name: "whoami", help: "show the signed-in user", run: a.whoami},
		{name: "logout", help: "sign out", run: a.logout},

		{name: "tests", usage: "[user_id]", help: "list drug tests", run: a.listDrugTests},
		{name: "addtest", help: "record a drug test", allowed: can(models.KindDrugTest), run: a.addDrugTest},
		{name: "meetings", usage: "[user_id]", help: "list meetings", run: a.listMeetings},
		{name: "addmeeting", help: "record a meeting", allowed: can(models.KindMeeting), run: a.addMeeting},

		{name: "payments", usage: "[user_id]", help: "list rent payments", run: a.listPayments},
		{name: "pay", help: "submit a rent payment", allowed: can(models.KindRentPayment), run: a.pay},
		{name: "confirm", usage: "<payment_id>", help: "confirm a pending payment", allowed: can(models.KindRentPaymentDecision), run: a.decide(models.Confirm)},
		{name: "reject", usage: "<payment_id>", help: "reject a pending payment", allowed: can(models.KindRentPaymentDecision), run: a.decide(models.Reject)},

		{name: "devotions", help: "list devotions", run: a.listDevotions},
		{name: "adddevotion", help: "write a devotion", allowed: can(models.KindDevotion), run: a.addDevotion},
		{name: "reading", help: "list reading materials by category", run: a.listReading},
		{name: "addreading", help: "add a reading material", allowed: can(models.KindReadingMaterial), run: a.addReading},
		{name: "events", usage: "[all]", help: "list upcoming calendar events", run: a.listEvents},
		{name: "addevent", help: "add a calendar event", allowed: can(models.KindCalendarEvent), run: a.addEvent},

		{name: "messages", help: "show messages", run: a.listMessages},
		{name: "send", usage: "[@user_id] <text>", help: "send a message, to everyone without @user_id", allowed: can(models.KindMessage), run: a.send},
		{name: "feed", usage: "on|off", help: "follow new messages", run: a.toggleFeed},

		{name: "settings", help: "show rent settings", run: a.showSettings},
		{name: "setrent", usage: "<amount> [due_day]", help: "change rent settings", allowed: can(models.KindSettings), run: a.setRent},
		{name: "users", usage: "[role]", help: "list users", allowed: staff, run: a.listUsers},
		{name: "role", usage: "<user_id> <role>", help: "change a user's role", allowed: func(u models.User) bool { return policy.CanChangeRoles(u.Role) }, run: a.changeRole},
		{name: "dashboard", usage: "[user_id]", help: "show summary counts", run: a.dashboard},
	}
}

func (a *App) printError(err error) {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable, try again later.")
	case errors.Is(err, common.ErrorUnauthorized):
		a.println("Your session has ended, please 'login' again.")
		a.session.Logout(context.Background())
	case errors.Is(err, common.ErrAuthorization):
		a.println("Access denied.")
	case errors.Is(err, common.ErrAlreadyDecided):
		a.println("That payment was already decided.")
	case errors.Is(err, common.ErrorNotFound):
		a.println("Not found.")
	default:
		a.println("Error:", err)
	}
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.in, prompt, a.out)
}

func (a *App) askDefault(prompt, def string) (string, error) {
	return GetWithDefault(a.in, prompt, def, a.out)
}

func (a *App) askDate(prompt string) (models.Timestamp, error) {
	s, err := a.askDefault(prompt, now().Format("2006-01-02"))
	if err != nil {
		return models.Timestamp{}, err
	}
	return models.ParseTimestamp(s)
}

// ownerArg is the optional user_id filter for list commands.
func ownerArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (a *App) login(ctx context.Context, _ []string) error {
	if u, ok := a.user(); ok {
		a.printf("Already signed in as %s.\n", u.Name)
		return nil
	}
	id, err := GetSecret(a.in, "Auth provider session id", a.out)
	if err != nil {
		return err
	}
	if id == "" {
		return common.Invalid("session id", "is required")
	}
	st := a.session.SignIn(ctx, id)
	if !st.Authenticated {
		a.println("Sign-in failed.")
		return nil
	}
	a.printf("Signed in as %s (%s)\n", st.User.Name, st.User.Role)
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	u, _ := a.user()
	a.printf("%s <%s> role=%s id=%s\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.feed.Stop()
	a.session.Logout(ctx)
	a.println("Signed out.")
	return nil
}

func (a *App) listDrugTests(ctx context.Context, args []string) error {
	list, err := client.List[models.DrugTest](ctx, a.api, client.PathDrugTests, ownerArg(args))
	if err != nil {
		return err
	}
	a.renderDrugTests(list)
	return nil
}

func (a *App) addDrugTest(ctx context.Context, _ []string) error {
	var t models.DrugTest
	var err error
	if t.UserID, err = a.ask("User id"); err != nil {
		return err
	}
	if t.TestDate, err = a.askDate("Test date"); err != nil {
		return err
	}
	if t.TestType, err = a.ask("Test type (" + strings.Join(models.TestTypes, ", ") + ")"); err != nil {
		return err
	}
	if t.Result, err = a.ask("Result (" + strings.Join(models.TestResults, ", ") + ")"); err != nil {
		return err
	}
	if t.Notes, err = a.ask("Notes"); err != nil {
		return err
	}
	if t.ImageURL, err = a.askImage(ctx); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathDrugTests, t)
	if err != nil {
		return err
	}
	a.printf("Drug test %s recorded.\n", created.ID)
	return nil
}

func (a *App) listMeetings(ctx context.Context, args []string) error {
	list, err := client.List[models.Meeting](ctx, a.api, client.PathMeetings, ownerArg(args))
	if err != nil {
		return err
	}
	a.renderMeetings(list)
	return nil
}

func (a *App) addMeeting(ctx context.Context, _ []string) error {
	var m models.Meeting
	var err error
	if m.UserID, err = a.ask("User id"); err != nil {
		return err
	}
	if m.MeetingDate, err = a.askDate("Meeting date"); err != nil {
		return err
	}
	if m.MeetingType, err = a.ask("Meeting type (" + strings.Join(models.MeetingTypes, ", ") + ")"); err != nil {
		return err
	}
	attended, err := a.askDefault("Attended (y/n)", "y")
	if err != nil {
		return err
	}
	m.Attended = strings.HasPrefix(strings.ToLower(attended), "y")
	if m.Notes, err = a.ask("Notes"); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathMeetings, m)
	if err != nil {
		return err
	}
	a.printf("Meeting %s recorded.\n", created.ID)
	return nil
}

func (a *App) listPayments(ctx context.Context, args []string) error {
	list, err := client.List[models.RentPayment](ctx, a.api, client.PathRentPayments, ownerArg(args))
	if err != nil {
		return err
	}
	a.renderPayments(list)
	return nil
}

func (a *App) pay(ctx context.Context, _ []string) error {
	var p models.RentPayment
	s, err := a.ask("Amount")
	if err != nil {
		return err
	}
	if p.Amount, err = models.ParseAmount(s); err != nil {
		return common.Invalid("amount", err.Error())
	}
	if p.PaymentDate, err = a.askDate("Payment date"); err != nil {
		return err
	}
	if p.Notes, err = a.ask("Notes"); err != nil {
		return err
	}
	if p.ImageURL, err = a.askImage(ctx); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathRentPayments, p)
	if err != nil {
		return err
	}
	a.printf("Payment %s of %s submitted, status %s.\n", created.ID, created.Amount, created.Status)
	return nil
}

// askImage optionally uploads a local image and returns its URL.
func (a *App) askImage(ctx context.Context) (string, error) {
	path, err := a.ask("Image file (optional)")
	if err != nil || path == "" {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return a.api.Upload(ctx, filepath.Base(path), f)
}

func (a *App) decide(d models.Decision) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return common.Invalid("payment id", "is required")
		}
		p, err := a.api.DecidePayment(ctx, args[0], d)
		if err != nil {
			return err
		}
		a.printf("Payment %s is now %s (by %s).\n", p.ID, p.Status, p.ConfirmedBy)
		return nil
	}
}

func (a *App) listDevotions(ctx context.Context, _ []string) error {
	list, err := client.List[models.Devotion](ctx, a.api, client.PathDevotions, "")
	if err != nil {
		return err
	}
	a.renderDevotions(list)
	return nil
}

func (a *App) addDevotion(ctx context.Context, _ []string) error {
	var d models.Devotion
	var err error
	if d.Title, err = a.ask("Title"); err != nil {
		return err
	}
	if d.ScriptureReference, err = a.ask("Scripture reference"); err != nil {
		return err
	}
	if d.Content, err = GetMultiline(a.in, "Content (markdown)", a.out); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathDevotions, d)
	if err != nil {
		return err
	}
	a.printf("Devotion %s published.\n", created.ID)
	return nil
}

func (a *App) listReading(ctx context.Context, _ []string) error {
	list, err := client.List[models.ReadingMaterial](ctx, a.api, client.PathReadingMaterials, "")
	if err != nil {
		return err
	}
	a.renderReading(list)
	return nil
}

func (a *App) addReading(ctx context.Context, _ []string) error {
	var m models.ReadingMaterial
	var err error
	if m.Title, err = a.ask("Title"); err != nil {
		return err
	}
	if m.Author, err = a.ask("Author"); err != nil {
		return err
	}
	if m.Category, err = a.ask("Category (" + strings.Join(models.ReadingCategories, ", ") + ")"); err != nil {
		return err
	}
	if m.Link, err = a.ask("Link"); err != nil {
		return err
	}
	if m.Description, err = a.ask("Description"); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathReadingMaterials, m)
	if err != nil {
		return err
	}
	a.printf("Reading material %s added.\n", created.ID)
	return nil
}

func (a *App) listEvents(ctx context.Context, args []string) error {
	var list []models.CalendarEvent
	var err error
	if len(args) > 0 && args[0] == "all" {
		list, err = client.List[models.CalendarEvent](ctx, a.api, client.PathCalendarEvents, "")
	} else {
		list, err = a.api.UpcomingEvents(ctx)
	}
	if err != nil {
		return err
	}
	a.renderEvents(list)
	return nil
}

func (a *App) addEvent(ctx context.Context, _ []string) error {
	var e models.CalendarEvent
	var err error
	if e.Title, err = a.ask("Title"); err != nil {
		return err
	}
	if e.EventDate, err = a.askDate("Event date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)"); err != nil {
		return err
	}
	if e.EventType, err = a.ask("Event type (" + strings.Join(models.EventTypes, ", ") + ")"); err != nil {
		return err
	}
	if e.Location, err = a.ask("Location"); err != nil {
		return err
	}
	if e.Description, err = a.ask("Description"); err != nil {
		return err
	}
	created, err := client.Create(ctx, a.api, client.PathCalendarEvents, e)
	if err != nil {
		return err
	}
	a.printf("Event %s added.\n", created.ID)
	return nil
}

func (a *App) listMessages(ctx context.Context, _ []string) error {
	list, err := a.api.Messages(ctx)
	if err != nil {
		return err
	}
	a.renderMessages(list)
	return nil
}

func (a *App) send(ctx context.Context, args []string) error {
	var recipient *string
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		id := strings.TrimPrefix(args[0], "@")
		recipient = &id
		args = args[1:]
	}
	m, err := a.api.SendMessage(ctx, strings.Join(args, " "), recipient)
	if err != nil {
		return err
	}
	a.printf("Message %s sent.\n", m.ID)
	return nil
}

func (a *App) toggleFeed(ctx context.Context, args []string) error {
	on := !a.feed.Running()
	if len(args) > 0 {
		on = args[0] == "on"
	}
	if on {
		a.feed.Start(ctx)
		a.println("Following messages.")
		return nil
	}
	a.feed.Stop()
	a.println("Stopped following messages.")
	return nil
}

// showFeed prints messages newer than the last one shown.
func (a *App) showFeed(list []models.Message, newest *models.Message) {
	a.seenMu.Lock()
	defer a.seenMu.Unlock()
	if newest == nil || newest.ID == a.lastSeen {
		return
	}
	start := 0
	for i, m := range list {
		if m.ID == a.lastSeen {
			start = i + 1
			break
		}
	}
	a.lastSeen = newest.ID
	a.println()
	for _, m := range list[start:] {
		a.printMessage(m)
	}
}

func (a *App) showSettings(ctx context.Context, _ []string) error {
	s, err := a.api.Settings(ctx)
	if err != nil {
		return err
	}
	a.printf("Expected rent: %s, due on day %d", s.ExpectedRentAmount, s.RentDueDay)
	if s.UpdatedBy != "" {
		a.printf(" (updated by %s)", s.UpdatedBy)
	}
	a.println()
	return nil
}

func (a *App) setRent(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.Invalid("amount", "is required")
	}
	amount, err := models.ParseAmount(args[0])
	if err != nil {
		return common.Invalid("amount", err.Error())
	}
	var day *int
	if len(args) > 1 {
		d, err := strconv.Atoi(args[1])
		if err != nil {
			return common.Invalid("due day", "must be a number")
		}
		day = &d
	}
	s, err := a.api.UpdateSettings(ctx, &amount, day)
	if err != nil {
		return err
	}
	a.printf("Settings saved: %s due on day %d.\n", s.ExpectedRentAmount, s.RentDueDay)
	return nil
}

func (a *App) listUsers(ctx context.Context, args []string) error {
	users, err := a.api.Users(ctx, models.Role(ownerArg(args)))
	if err != nil {
		return err
	}
	a.renderUsers(users)
	return nil
}

func (a *App) changeRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: role <user_id> <role>", common.ErrValidation)
	}
	u, err := a.api.UpdateRole(ctx, args[0], models.Role(args[1]))
	if err != nil {
		return err
	}
	a.printf("%s is now %s.\n", u.Name, u.Role)
	return nil
}

func (a *App) dashboard(ctx context.Context, args []string) error {
	s, err := a.api.Dashboard(ctx, ownerArg(args))
	if err != nil {
		return err
	}
	a.printf("Drug tests: %d\nMeetings attended: %d\nConfirmed payments: %d\nDevotions: %d\n",
		s.DrugTests, s.MeetingsAttended, s.ConfirmedPayments, s.Devotions)
	return nil
}
