package order

// PaymentStatus tracks progress through the deposit then balance model
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusDepositPaid   PaymentStatus = "deposit_paid"
	PaymentStatusFullyPaid     PaymentStatus = "fully_paid"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusDepositPaid, PaymentStatusFullyPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// ShipStatus is the physical progress of an order
type ShipStatus string

const (
	ShipStatusPending      ShipStatus = "pending"
	ShipStatusInProduction ShipStatus = "in_production"
	ShipStatusReady        ShipStatus = "ready"
	ShipStatusShipped      ShipStatus = "shipped"
	ShipStatusDelivered    ShipStatus = "delivered"
)

// IsValid checks if the status is a valid ShipStatus
func (s ShipStatus) IsValid() bool {
	switch s {
	case ShipStatusPending, ShipStatusInProduction, ShipStatusReady, ShipStatusShipped, ShipStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of ShipStatus
func (s ShipStatus) String() string {
	return string(s)
}

// requiresDeposit reports whether moving to s needs the deposit in hand
func (s ShipStatus) requiresDeposit() bool {
	return s == ShipStatusInProduction || s == ShipStatusReady || s == ShipStatusShipped || s == ShipStatusDelivered
}

// Source distinguishes manually entered orders from synced ones
type Source string

const (
	SourceManual Source = "manual"
	SourceSynced Source = "synced"
)

// IsValid checks if the source is known
func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceSynced
}

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}
