package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// Record collection paths, relative to the server base URL.
const (
	PathDrugTests        = "/api/drug-tests"
	PathMeetings         = "/api/meetings"
	PathRentPayments     = "/api/rent-payments"
	PathDevotions        = "/api/devotions"
	PathReadingMaterials = "/api/reading-materials"
	PathCalendarEvents   = "/api/calendar-events"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SessionInfo is the answer to a successful session exchange.
type SessionInfo struct {
	SessionToken string      `json:"session_token"`
	UserID       string      `json:"user_id"`
	User         models.User `json:"user"`
}

// EstablishSession trades an auth provider session id for a credential and
// keeps the credential for subsequent calls.
func (c *Client) EstablishSession(ctx context.Context, providerSessionID string) (*SessionInfo, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/session", nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.ProviderSessionHeader, providerSessionID)

	var out SessionInfo
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.SessionToken)
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout asks the server to drop the session. The local credential is
// cleared whatever the outcome.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// List fetches a record collection. userID narrows the list for mentors
// and admins; the server ignores it for users.
func List[T any](ctx context.Context, c *Client, path, userID string) ([]T, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out []T
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Create[T any](ctx context.Context, c *Client, path string, rec T) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, path, nil, rec, &out)
	return out, err
}

// UpcomingEvents lists calendar events from now on.
func (c *Client) UpcomingEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	err := c.do(ctx, http.MethodGet, PathCalendarEvents, url.Values{"upcoming": {"true"}}, nil, &out)
	return out, err
}

func (c *Client) DecidePayment(ctx context.Context, id string, d models.Decision) (*models.RentPayment, error) {
	var p models.RentPayment
	body := map[string]bool{"confirmed": bool(d)}
	if err := c.do(ctx, http.MethodPatch, PathRentPayments+"/"+url.PathEscape(id)+"/confirm", nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Messages(ctx context.Context) ([]models.Message, error) {
	var out []models.Message
	err := c.do(ctx, http.MethodGet, "/api/messages", nil, nil, &out)
	return out, err
}

// SendMessage posts content to recipientID, or to everyone when it is nil.
func (c *Client) SendMessage(ctx context.Context, content string, recipientID *string) (*models.Message, error) {
	body := struct {
		Content     string  `json:"content"`
		RecipientID *string `json:"recipient_id"`
	}{content, recipientID}

	var m models.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", nil, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Settings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if err := c.do(ctx, http.MethodGet, "/api/admin/settings", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings changes the fields that are non-nil.
func (c *Client) UpdateSettings(ctx context.Context, amount *models.Amount, dueDay *int) (*models.Settings, error) {
	body := struct {
		ExpectedRentAmount *models.Amount `json:"expected_rent_amount,omitempty"`
		RentDueDay         *int           `json:"rent_due_day,omitempty"`
	}{amount, dueDay}

	var s models.Settings
	if err := c.do(ctx, http.MethodPatch, "/api/admin/settings", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Users(ctx context.Context, role models.Role) ([]models.User, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", string(role))
	}
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/api/users", q, nil, &out)
	return out, err
}

func (c *Client) UpdateRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	var u models.User
	body := map[string]models.Role{"role": role}
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(userID)+"/role", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Dashboard(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var s models.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", q, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upload sends an image and returns the URL to store in image_url.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", nil, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body) == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
