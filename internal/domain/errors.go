// Package domain содержит правила переходов состояний закупки без ввода-вывода.
package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind задает класс ошибки, по которому транспорт выбирает ответ.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	InvalidArgument
	IllegalState
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case IllegalState:
		return "illegal_state"
	default:
		return "unexpected"
	}
}

// Error описывает бизнес-ошибку с классом и машинным кодом.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is сравнивает по коду, чтобы уточнённые копии совпадали с исходной ошибкой.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Withf возвращает ошибку того же кода с уточнённым сообщением.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Msg: e.Msg + ": " + fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrBiddingNotFound       = newError(NotFound, "bidding_not_found", "bidding not found")
	ErrInvitationNotFound    = newError(NotFound, "invitation_not_found", "invitation not found")
	ErrParticipationNotFound = newError(NotFound, "participation_not_found", "participation not found")
	ErrEvaluationNotFound    = newError(NotFound, "evaluation_not_found", "evaluation not found")
	ErrContractNotFound      = newError(NotFound, "contract_not_found", "contract not found")
	ErrOrderNotFound         = newError(NotFound, "order_not_found", "order not found")
	ErrMemberNotFound        = newError(NotFound, "member_not_found", "member not found")

	ErrInvalidArgument = newError(InvalidArgument, "invalid_argument", "invalid argument")
	ErrUnknownStatus   = newError(InvalidArgument, "unknown_status", "unknown status code")
	ErrUnknownMethod   = newError(InvalidArgument, "unknown_method", "unknown method code")
	ErrInvalidScore    = newError(InvalidArgument, "invalid_score", "score must be between 0 and 100")

	ErrInvalidState        = newError(IllegalState, "invalid_state", "operation not allowed in current state")
	ErrAlreadyInvited      = newError(IllegalState, "already_invited", "supplier already invited")
	ErrAlreadyResponded    = newError(IllegalState, "already_responded", "invitation already answered")
	ErrAlreadyParticipated = newError(IllegalState, "already_participated", "supplier already participated")
	ErrAlreadyEvaluated    = newError(IllegalState, "already_evaluated", "participation already evaluated by this evaluator")
	ErrLockedForEdit       = newError(IllegalState, "locked_for_edit", "evaluation is selected and locked for edit")
	ErrNoEvaluations       = newError(IllegalState, "no_evaluations", "bidding has no evaluations")
	ErrAlreadyApproved     = newError(IllegalState, "already_approved", "order already approved")
	ErrOrderExists         = newError(IllegalState, "order_exists", "order already created for participation")
	ErrContractExists      = newError(IllegalState, "contract_exists", "active contract already drafted for participation")
	ErrNotWinner           = newError(IllegalState, "not_winner", "participation is not the selected winner")
	ErrHasChildren         = newError(IllegalState, "has_children", "bidding has dependent records")
	ErrForbidden           = newError(IllegalState, "forbidden", "member cannot perform this action")
	ErrDuplicateNumber     = newError(IllegalState, "duplicate_number", "document number already taken")
	ErrAlreadySelected     = newError(IllegalState, "already_selected", "bidding already has a selected winner")
)

// KindOf разворачивает цепочку обёрток и возвращает класс ошибки.
func KindOf(err error) Kind {
	if err == nil {
		return Unexpected
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return Unexpected
}

// Invalid оборачивает ошибку валидации входных данных.
func Invalid(format string, args ...interface{}) *Error {
	return ErrInvalidArgument.Withf(format, args...)
}
