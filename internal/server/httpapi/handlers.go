package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/services"
)

type sessionResponse struct {
	SessionToken string      `json:"session_token"`
	UserID       string      `json:"user_id"`
	User         models.User `json:"user"`
}

func (s *Server) handleEstablish(w http.ResponseWriter, r *http.Request) {
	token, user, err := s.Sessions.Establish(r.Context(), r.Header.Get(common.ProviderSessionHeader))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.SessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: sameSite(s.opts.CookieSecure),
	})
	writeJSON(w, http.StatusOK, sessionResponse{SessionToken: token, UserID: user.ID, User: *user})
}

// sameSite allows cross-site cookies only over TLS; browsers reject
// SameSite=None without Secure.
func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: sameSite(s.opts.CookieSecure),
	})

	if token := credential(r); token != "" {
		if err := s.Sessions.Invalidate(r.Context(), token); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	users, err := s.Users.List(r.Context(), actor, models.Role(r.URL.Query().Get("role")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

// handleUpdateRole takes the role from the JSON body or the role query
// parameter.
func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())

	req := roleRequest{Role: models.Role(r.URL.Query().Get("role"))}
	if req.Role == "" {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	u, err := s.Users.UpdateRole(r.Context(), actor, chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type decisionRequest struct {
	Confirmed *bool `json:"confirmed"`
}

func (s *Server) handleDecidePayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())

	var req decisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.Confirmed == nil {
		s.writeServiceError(w, r, common.Invalid("confirmed", "is required"))
		return
	}

	p, err := s.Payments.Decide(r.Context(), chi.URLParam(r, "paymentID"), models.Decision(*req.Confirmed), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type messageRequest struct {
	Content     string  `json:"content"`
	RecipientID *string `json:"recipient_id"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	m, err := s.Messages.Send(r.Context(), req.Content, req.RecipientID, actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	ms, err := s.Messages.List(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.Settings.Get(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())

	var req services.SettingsUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	st, err := s.Settings.Update(r.Context(), req, actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	sum, err := s.Dashboard.Summary(r.Context(), actor, r.URL.Query().Get("user_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeServiceError(w, r, common.Invalid("file", "exceeds 10 MiB"))
			return
		}
		s.writeServiceError(w, r, common.Invalid("file", "multipart field is required"))
		return
	}
	defer file.Close()

	url, err := s.Uploads.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	url, err := s.Uploads.DownloadURL(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
