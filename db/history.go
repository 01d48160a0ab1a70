package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/models"
)

// Журнал только дополняется.

func (s *Storage) AddStatusHistory(ctx context.Context, h *models.StatusHistory) error {
	query := `
        INSERT INTO status_history
            (entity_type, entity_id, from_status, to_status, reason, actor_id, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		h.EntityType, h.EntityID, h.FromStatus, h.ToStatus, h.Reason, h.ActorID, h.CreatedAt).
		Scan(&h.ID)
	return errors.Wrapf(err, "failed to append history of %s %d", h.EntityType, h.EntityID)
}

func (s *Storage) ListStatusHistory(ctx context.Context, entity models.EntityType, id int64) ([]models.StatusHistory, error) {
	history := []models.StatusHistory{}
	query := `
        SELECT * FROM status_history
        WHERE entity_type=$1 AND entity_id=$2
        ORDER BY created_at ASC, id ASC`
	if err := s.all(ctx, &history, query, entity, id); err != nil {
		return nil, errors.Wrapf(err, "failed to list history of %s %d", entity, id)
	}
	return history, nil
}
