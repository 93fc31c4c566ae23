package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// DashboardService computes the landing-page counters.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m}
}

// Summary counts records owned by ownerID, scoped the same way as record
// lists: a user always gets their own counts.
func (s *DashboardService) Summary(ctx context.Context, actor models.User, ownerID string) (models.DashboardSummary, error) {
	sum, err := s.repomanager.Dashboard(s.db).Summary(ctx, policy.ScopeOwner(actor, ownerID))
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("error computing dashboard: %w", err)
	}
	return sum, nil
}
