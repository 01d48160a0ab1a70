// Package pricing считает сумму поставки, налог и итог по цене за единицу.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"bidding/models"
)

// Ставка налога по умолчанию (10%)
var DefaultTaxRate = decimal.NewFromFloat(0.1)

// Цена за единицу хранится в NUMERIC(18, 2)
const UnitPricePlaces = 2

var (
	ErrNegativeUnitPrice = errors.New("unit price cannot be negative")
	ErrUnitPricePlaces   = errors.New("unit price cannot have more than 2 decimal places")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNegativeTaxRate   = errors.New("tax rate cannot be negative")
)

type Breakdown struct {
	SupplyPrice decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Calculate считает цену со ставкой налога по умолчанию.
func Calculate(unitPrice decimal.Decimal, quantity int) (Breakdown, error) {
	return CalculateWithRate(unitPrice, quantity, DefaultTaxRate)
}

// CalculateWithRate округляет каждую величину до целых денежных единиц (half-up).
func CalculateWithRate(unitPrice decimal.Decimal, quantity int, rate decimal.Decimal) (Breakdown, error) {
	if unitPrice.IsNegative() {
		return Breakdown{}, ErrNegativeUnitPrice
	}
	if !unitPrice.Equal(unitPrice.Round(UnitPricePlaces)) {
		return Breakdown{}, ErrUnitPricePlaces
	}
	if quantity <= 0 {
		return Breakdown{}, ErrInvalidQuantity
	}
	if rate.IsNegative() {
		return Breakdown{}, ErrNegativeTaxRate
	}

	supply := roundHalfUp(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	tax := roundHalfUp(supply.Mul(rate))
	return Breakdown{
		SupplyPrice: supply,
		Tax:         tax,
		Total:       supply.Add(tax),
	}, nil
}

// Apply записывает цену за единицу и производные поля в запись.
func (b Breakdown) Apply(p *models.Price, unitPrice decimal.Decimal) {
	p.UnitPrice = unitPrice
	p.SupplyPrice = b.SupplyPrice
	p.Tax = b.Tax
	p.TotalPrice = b.Total
}

// Reprice пересчитывает ценовые поля записи для нового количества или цены.
func Reprice(p *models.Price, unitPrice decimal.Decimal, quantity int) error {
	b, err := Calculate(unitPrice, quantity)
	if err != nil {
		return err
	}
	b.Apply(p, unitPrice)
	return nil
}

// decimal.Round округляет половину от нуля; для неотрицательных сумм это half-up.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
