package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

const dateLayout = "2006-01-02"

func (a *App) table(header string, rows func(w *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func (a *App) renderDrugTests(list []models.DrugTest) {
	if len(list) == 0 {
		a.println("No drug tests.")
		return
	}
	a.table("ID\tUSER\tDATE\tTYPE\tRESULT\tBY", func(w *tabwriter.Writer) {
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.UserID, t.TestDate.Format(dateLayout), t.TestType, t.Result, t.AdministeredBy)
		}
	})
}

func (a *App) renderMeetings(list []models.Meeting) {
	if len(list) == 0 {
		a.println("No meetings.")
		return
	}
	a.table("ID\tUSER\tDATE\tTYPE\tATTENDED\tBY", func(w *tabwriter.Writer) {
		for _, m := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", m.ID, m.UserID, m.MeetingDate.Format(dateLayout), m.MeetingType, m.Attended, m.RecordedBy)
		}
	})
}

func (a *App) renderPayments(list []models.RentPayment) {
	if len(list) == 0 {
		a.println("No rent payments.")
		return
	}
	a.table("ID\tUSER\tDATE\tAMOUNT\tSTATUS\tBY\t", func(w *tabwriter.Writer) {
		for _, p := range list {
			flag := ""
			if p.Mismatched {
				flag = "amount differs from expected rent"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.UserID, p.PaymentDate.Format(dateLayout), p.Amount, p.Status, p.ConfirmedBy, flag)
		}
	})
}

func (a *App) renderDevotions(list []models.Devotion) {
	if len(list) == 0 {
		a.println("No devotions.")
		return
	}
	for _, d := range list {
		a.printf("# %s", d.Title)
		if d.ScriptureReference != "" {
			a.printf(" (%s)", d.ScriptureReference)
		}
		a.printf("\n%s\n\n", d.Content)
	}
}

// renderReading prints materials under their category, in the fixed
// category order.
func (a *App) renderReading(list []models.ReadingMaterial) {
	if len(list) == 0 {
		a.println("No reading materials.")
		return
	}
	for _, cat := range models.ReadingCategories {
		var printed bool
		for _, m := range list {
			if m.Category != cat {
				continue
			}
			if !printed {
				a.printf("%s:\n", cat)
				printed = true
			}
			a.printf("  %s by %s", m.Title, m.Author)
			if m.Link != "" {
				a.printf(" <%s>", m.Link)
			}
			a.println()
		}
	}
}

func (a *App) renderEvents(list []models.CalendarEvent) {
	if len(list) == 0 {
		a.println("No events.")
		return
	}
	a.table("DATE\tTYPE\tTITLE\tLOCATION", func(w *tabwriter.Writer) {
		for _, e := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.EventDate.Format("2006-01-02 15:04"), e.EventType, e.Title, e.Location)
		}
	})
}

func (a *App) renderMessages(list []models.Message) {
	if len(list) == 0 {
		a.println("No messages.")
		return
	}
	for _, m := range list {
		a.printMessage(m)
	}
	a.seenMu.Lock()
	a.lastSeen = list[len(list)-1].ID
	a.seenMu.Unlock()
}

func (a *App) printMessage(m models.Message) {
	to := "everyone"
	if m.RecipientID != nil {
		to = *m.RecipientID
	}
	a.printf("[%s] %s -> %s: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.SenderID, to, m.Content)
}

func (a *App) renderUsers(list []models.User) {
	a.table("ID\tNAME\tEMAIL\tROLE", func(w *tabwriter.Writer) {
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
		}
	})
}
