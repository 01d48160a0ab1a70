// Package refcode хранит отображаемые названия кодов статусов и способов закупки.
// Логика переходов от него не зависит: таблицу можно заменить целиком.
package refcode

import (
	"context"
	"sync"

	"bidding/models"
)

const (
	GroupBiddingStatus  = "BIDDING_STATUS"
	GroupContractStatus = "CONTRACT_STATUS"
	GroupOrderStatus    = "ORDER_STATUS"
	GroupBidMethod      = "BID_METHOD"
)

// Source отдает записи внешнего справочника кодов.
type Source interface {
	ListReferenceCodes(ctx context.Context) ([]models.ReferenceCode, error)
}

type key struct{ group, code string }

// Table хранит названия кодов, безопасна для параллельного чтения.
type Table struct {
	mu    sync.RWMutex
	names map[key]string
}

// Defaults используются, пока справочник не загружен.
func Defaults() []models.ReferenceCode {
	return []models.ReferenceCode{
		{Group: GroupBiddingStatus, Code: string(models.BiddingPending), Name: "Pending"},
		{Group: GroupBiddingStatus, Code: string(models.BiddingOngoing), Name: "Ongoing"},
		{Group: GroupBiddingStatus, Code: string(models.BiddingClosed), Name: "Closed"},
		{Group: GroupBiddingStatus, Code: string(models.BiddingCanceled), Name: "Canceled"},
		{Group: GroupContractStatus, Code: string(models.ContractDraft), Name: "Draft"},
		{Group: GroupContractStatus, Code: string(models.ContractInProgress), Name: "In progress"},
		{Group: GroupContractStatus, Code: string(models.ContractClosed), Name: "Closed"},
		{Group: GroupContractStatus, Code: string(models.ContractCanceled), Name: "Canceled"},
		{Group: GroupOrderStatus, Code: string(models.OrderPending), Name: "Awaiting approval"},
		{Group: GroupOrderStatus, Code: string(models.OrderApproved), Name: "Approved"},
		{Group: GroupOrderStatus, Code: string(models.OrderCanceled), Name: "Canceled"},
		{Group: GroupBidMethod, Code: "OPEN", Name: "Open competitive bidding"},
		{Group: GroupBidMethod, Code: "RESTRICTED", Name: "Restricted bidding"},
		{Group: GroupBidMethod, Code: "NEGOTIATED", Name: "Negotiated procurement"},
	}
}

func NewTable(codes []models.ReferenceCode) *Table {
	t := &Table{}
	t.Replace(codes)
	return t
}

// Replace подменяет содержимое таблицы целиком.
func (t *Table) Replace(codes []models.ReferenceCode) {
	names := make(map[key]string, len(codes))
	for _, c := range codes {
		names[key{c.Group, c.Code}] = c.Name
	}
	t.mu.Lock()
	t.names = names
	t.mu.Unlock()
}

// Load читает справочник из источника; пустой результат оставляет таблицу как есть.
func (t *Table) Load(ctx context.Context, src Source) error {
	codes, err := src.ListReferenceCodes(ctx)
	if err != nil {
		return err
	}
	if len(codes) > 0 {
		t.Replace(codes)
	}
	return nil
}

func (t *Table) Has(group, code string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.names[key{group, code}]
	return ok
}

// Name возвращает название кода или сам код, если названия нет.
func (t *Table) Name(group, code string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.names[key{group, code}]; ok {
		return n
	}
	return code
}
