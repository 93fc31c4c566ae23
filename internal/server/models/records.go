package models

import "time"

// Drug test types.
const (
	TestUrinalysis   = "urinalysis"
	TestBreathalyzer = "breathalyzer"
	TestBlood        = "blood"
	TestHair         = "hair"
)

// Drug test results.
const (
	ResultNegative = "negative"
	ResultPositive = "positive"
	ResultDilute   = "dilute"
	ResultInvalid  = "invalid"
)

var (
	TestTypes   = []string{TestUrinalysis, TestBreathalyzer, TestBlood, TestHair}
	TestResults = []string{ResultNegative, ResultPositive, ResultDilute, ResultInvalid}

	MeetingTypes = []string{
		"Group Therapy", "Individual Counseling", "Bible Study",
		"Life Skills", "AA/NA Meeting", "Other",
	}

	// ReadingCategories is also the display order of grouped materials.
	ReadingCategories = []string{"Recovery", "Spiritual", "Life Skills", "Personal Growth", "Other"}

	EventTypes = []string{"Meeting", "Counseling", "Event", "Activity", "Other"}
)

type DrugTest struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TestDate       Timestamp `json:"test_date"`
	TestType       string    `json:"test_type"`
	Result         string    `json:"result"`
	AdministeredBy string    `json:"administered_by"`
	Notes          string    `json:"notes,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Meeting struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MeetingDate Timestamp `json:"meeting_date"`
	MeetingType string    `json:"meeting_type"`
	Attended    bool      `json:"attended"`
	RecordedBy  string    `json:"recorded_by"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Devotion struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	ContentHTML        string    `json:"content_html,omitempty"`
	ScriptureReference string    `json:"scripture_reference,omitempty"`
	AuthorID           string    `json:"author_id"`
	CreatedAt          time.Time `json:"created_at"`
}

type ReadingMaterial struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Link        string    `json:"link,omitempty"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	EventDate   Timestamp `json:"event_date"`
	EventType   string    `json:"event_type"`
	Location    string    `json:"location,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is a direct message, or a broadcast when RecipientID is nil.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID *string   `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardSummary holds the counters shown on the landing dashboard.
type DashboardSummary struct {
	DrugTests         int `json:"drug_tests"`
	MeetingsAttended  int `json:"meetings_attended"`
	ConfirmedPayments int `json:"confirmed_payments"`
	Devotions         int `json:"devotions"`
}
