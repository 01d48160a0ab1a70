package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"bidding/internal/domain"
)

// Storage выполняет запросы либо через пул соединений, либо внутри транзакции.
type Storage struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, q: db}
}

// Open подключается к postgres и проверяет соединение.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return conn, nil
}

// InTx выполняет fn в одной транзакции. Вложенный вызов переиспользует текущую.
func (s *Storage) InTx(ctx context.Context, fn func(tx *Storage) error) error {
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(&Storage{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

func (s *Storage) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

func (s *Storage) all(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

const uniqueViolation pq.ErrorCode = "23505"

// Имена ограничений из миграций и соответствующие им бизнес-ошибки.
var uniqueConstraints = map[string]*domain.Error{
	"bidding_bid_number_key":                   domain.ErrDuplicateNumber,
	"supplier_invitation_bidding_supplier_key": domain.ErrAlreadyInvited,
	"participation_bidding_supplier_key":       domain.ErrAlreadyParticipated,
	"evaluation_participation_evaluator_key":   domain.ErrAlreadyEvaluated,
	"evaluation_one_selected_idx":              domain.ErrAlreadySelected,
	"contract_transaction_number_key":          domain.ErrDuplicateNumber,
	"contract_active_participation_idx":        domain.ErrContractExists,
	"purchase_order_order_number_key":          domain.ErrDuplicateNumber,
	"purchase_order_active_participation_idx":  domain.ErrOrderExists,
}

// mapError переводит нарушения уникальности в бизнес-ошибки, остальное оборачивает.
func mapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if de, ok := uniqueConstraints[pqErr.Constraint]; ok {
			return de
		}
	}
	return errors.Wrapf(err, format, args...)
}

// notFound подменяет sql.ErrNoRows на ошибку "не найдено" нужной сущности.
func notFound(err error, nf *domain.Error, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nf.Withf("%v", id)
	}
	return errors.Wrapf(err, "failed to load %v", id)
}

// affected проверяет, что UPDATE или DELETE затронул строку.
func affected(res sql.Result, err error, nf *domain.Error, id int64) error {
	if err != nil {
		return mapError(err, "failed to write %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return nf.Withf("%d", id)
	}
	return nil
}

// where собирает условия фильтра с позиционными параметрами.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page дописывает LIMIT/OFFSET; limit <= 0 означает без ограничения.
func page(query string, limit, offset int) string {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}
	return query
}
