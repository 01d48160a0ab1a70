package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

// Справочник участников и кодов заполняется извне, здесь только чтение.

func (s *Storage) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	m := &models.Member{}
	query := `SELECT * FROM member WHERE id=$1`
	if err := s.get(ctx, m, query, id); err != nil {
		return nil, notFound(err, domain.ErrMemberNotFound, id)
	}
	return m, nil
}

func (s *Storage) GetMemberByUsername(ctx context.Context, username string) (*models.Member, error) {
	m := &models.Member{}
	query := `SELECT * FROM member WHERE username=$1`
	if err := s.get(ctx, m, query, username); err != nil {
		return nil, notFound(err, domain.ErrMemberNotFound, username)
	}
	return m, nil
}

func (s *Storage) ListReferenceCodes(ctx context.Context) ([]models.ReferenceCode, error) {
	codes := []models.ReferenceCode{}
	query := `SELECT code_group, code, name FROM reference_code ORDER BY code_group, code`
	if err := s.all(ctx, &codes, query); err != nil {
		return nil, errors.Wrap(err, "failed to list reference codes")
	}
	return codes, nil
}
