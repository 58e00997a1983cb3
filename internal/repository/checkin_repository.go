package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

const listCheckInsQuery = `SELECT id, event_id, user_id, checked_in_at, method, valid, created_at,
        COALESCE(origin, '') AS origin
        FROM checkins ORDER BY checked_in_at, id`

// CheckInRepository reads attendance check-ins.
type CheckInRepository struct {
	db *sqlx.DB
}

// NewCheckInRepository instantiates the repository.
func NewCheckInRepository(db *sqlx.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// List returns every check-in. Check-ins pointing at unknown events are kept;
// the analytics engine reports them as orphaned.
func (r *CheckInRepository) List(ctx context.Context) ([]models.CheckIn, error) {
	checkIns := make([]models.CheckIn, 0)
	if err := r.db.SelectContext(ctx, &checkIns, listCheckInsQuery); err != nil {
		return nil, fmt.Errorf("query checkins: %w", err)
	}
	return checkIns, nil
}
