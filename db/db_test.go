package db

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"bidding/internal/domain"
)

func TestMapError_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		want       *domain.Error
	}{
		{"supplier_invitation_bidding_supplier_key", domain.ErrAlreadyInvited},
		{"participation_bidding_supplier_key", domain.ErrAlreadyParticipated},
		{"evaluation_participation_evaluator_key", domain.ErrAlreadyEvaluated},
		{"evaluation_one_selected_idx", domain.ErrAlreadySelected},
		{"contract_transaction_number_key", domain.ErrDuplicateNumber},
		{"contract_active_participation_idx", domain.ErrContractExists},
		{"purchase_order_active_participation_idx", domain.ErrOrderExists},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := mapError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint}, "insert")
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, domain.IllegalState, domain.KindOf(err))
		})
	}
}

func TestMapError_Other(t *testing.T) {
	require.NoError(t, mapError(nil, "noop"))

	err := mapError(&pq.Error{Code: uniqueViolation, Constraint: "member_username_key"}, "insert member")
	require.Equal(t, domain.Unexpected, domain.KindOf(err))
	require.Contains(t, err.Error(), "insert member")

	err = mapError(&pq.Error{Code: "23503", Constraint: "participation_bidding_supplier_key"}, "insert")
	require.Equal(t, domain.Unexpected, domain.KindOf(err))
}

func TestNotFound(t *testing.T) {
	err := notFound(errors.Wrap(sql.ErrNoRows, "get"), domain.ErrBiddingNotFound, int64(42))
	require.ErrorIs(t, err, domain.ErrBiddingNotFound)
	require.Equal(t, "bidding not found: 42", err.Error())

	err = notFound(sql.ErrConnDone, domain.ErrBiddingNotFound, int64(42))
	require.Equal(t, domain.Unexpected, domain.KindOf(err))
}

type result int64

func (r result) LastInsertId() (int64, error) { return 0, nil }
func (r result) RowsAffected() (int64, error) { return int64(r), nil }

func TestAffected(t *testing.T) {
	require.NoError(t, affected(result(1), nil, domain.ErrOrderNotFound, 3))
	require.ErrorIs(t, affected(result(0), nil, domain.ErrOrderNotFound, 3), domain.ErrOrderNotFound)
}

func TestWhere(t *testing.T) {
	w := &where{}
	require.Equal(t, "", w.String())

	w.add("status = %s", "DRAFT")
	w.addRaw("NOT canceled")
	w.add("supplier_id = %s", int64(5))
	require.Equal(t, " WHERE status = $1 AND NOT canceled AND supplier_id = $2", w.String())
	require.Equal(t, []interface{}{"DRAFT", int64(5)}, w.args)
}

func TestPage(t *testing.T) {
	require.Equal(t, "SELECT 1", page("SELECT 1", 0, 0))
	require.Equal(t, "SELECT 1 LIMIT 10", page("SELECT 1", 10, 0))
	require.Equal(t, "SELECT 1 LIMIT 10 OFFSET 20", page("SELECT 1", 10, 20))
}
