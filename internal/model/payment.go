package model

import (
    "strings"
    "time"
)

// PaymentMethod lists the channels tenants pay rent through.
type PaymentMethod string

const (
    MethodMPesa       PaymentMethod = "MPESA"
    MethodTigoPesa    PaymentMethod = "TIGOPESA"
    MethodAirtelMoney PaymentMethod = "AIRTEL_MONEY"
    MethodHaloPesa    PaymentMethod = "HALOPESA"
    MethodBank        PaymentMethod = "BANK"
    MethodCash        PaymentMethod = "CASH"
)

// ParsePaymentMethod normalises s and reports whether it is supported.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
    m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
    switch m {
    case MethodMPesa, MethodTigoPesa, MethodAirtelMoney, MethodHaloPesa, MethodBank, MethodCash:
        return m, true
    }
    return "", false
}

// PaymentStatus is the verification state of a recorded payment.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "PENDING"
    PaymentConfirmed PaymentStatus = "CONFIRMED"
    PaymentRejected  PaymentStatus = "REJECTED"
)

// Payment is a rent payment a tenant recorded against an approved
// booking.  The landlord confirms or rejects it after checking the
// mobile-money or bank reference.
type Payment struct {
    ID            uint64        `json:"id"`
    BookingID     uint64        `json:"booking_id"`
    PropertyID    uint64        `json:"property_id"`
    PropertyTitle string        `json:"property_title,omitempty"`
    TenantID      uint64        `json:"tenant_id"`
    AmountTZS     uint64        `json:"amount_tzs"`
    Method        PaymentMethod `json:"method"`
    Reference     string        `json:"reference"`
    Status        PaymentStatus `json:"status"`
    CreatedAt     time.Time     `json:"created_at"`
    UpdatedAt     time.Time     `json:"updated_at"`
}
