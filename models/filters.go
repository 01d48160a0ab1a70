package models

import "time"

type BiddingFilter struct {
	Status BiddingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type ContractFilter struct {
	Status     ContractStatus
	SupplierID int64
	BiddingID  int64
	// ExpiresBefore отбирает договоры с end_date не позже указанного момента.
	ExpiresBefore *time.Time
	Limit         int
	Offset        int
}

type OrderFilter struct {
	Status     OrderStatus
	SupplierID int64
	BiddingID  int64
	Limit      int
	Offset     int
}
