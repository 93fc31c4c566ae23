package httpapi

import (
	"net/http"
	"strconv"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/services"
)

func createRecord[T any](s *Server, api RecordAPI[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := UserFromContext(r.Context())

		var rec T
		if err := decodeJSON(w, r, &rec); err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		created, err := api.Create(r.Context(), rec, actor)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// refineFilter adds route-specific query parameters to a list filter.
type refineFilter func(r *http.Request, f *records.Filter)

// listRecords serves a record list. present, when set, reshapes the list
// before it is written.
func listRecords[T any](s *Server, api RecordAPI[T], present func(r *http.Request, list []T) any, refine ...refineFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := UserFromContext(r.Context())

		f := records.Filter{OwnerID: r.URL.Query().Get("user_id")}
		for _, fn := range refine {
			fn(r, &f)
		}

		list, err := api.List(r.Context(), actor, f)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if present != nil {
			writeJSON(w, http.StatusOK, present(r, list))
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// upcomingOnly honours ?upcoming=true by listing from now on.
func (s *Server) upcomingOnly(r *http.Request, f *records.Filter) {
	if upcoming, _ := strconv.ParseBool(r.URL.Query().Get("upcoming")); upcoming {
		f.From = s.now().UTC()
	}
}

func groupReading(r *http.Request, list []models.ReadingMaterial) any {
	if grouped, _ := strconv.ParseBool(r.URL.Query().Get("grouped")); grouped {
		return services.GroupReadingMaterials(list)
	}
	return list
}
