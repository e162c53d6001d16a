package payment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusExpired  Status = "EXPIRED"
	StatusRefunded Status = "REFUNDED"
)

type Method string

const (
	MethodQRIS          Method = "QRIS"
	MethodMobileBanking Method = "MOBILE_BANKING"
	MethodCreditCard    Method = "CREDIT_CARD"
	MethodEWallet       Method = "EWALLET"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodQRIS, MethodMobileBanking, MethodCreditCard, MethodEWallet:
		return true
	default:
		return false
	}
}

const (
	TypeSubscription = "SUBSCRIPTION"
	TypeOneTime      = "ONE_TIME"
	TypeCredits      = "CREDITS"
)

const (
	DurationMonthly = "monthly"
	DurationYearly  = "yearly"
)

type Payment struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Amount        int64      `json:"amount"` // whole currency units
	Currency      string     `json:"currency"`
	Method        Method     `json:"method"`
	Status        Status     `json:"status"`
	Type          string     `json:"type"`
	Plan          string     `json:"plan"`
	Duration      string     `json:"duration"`
	TransactionID *string    `json:"transactionId,omitempty"`
	PaymentURL    *string    `json:"paymentUrl,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// pricing is the subscription price table in USD: plan -> duration -> amount.
var pricing = map[string]map[string]int64{
	"BASIC":   {DurationMonthly: 0, DurationYearly: 0},
	"PRO":     {DurationMonthly: 29, DurationYearly: 290},
	"PREMIUM": {DurationMonthly: 99, DurationYearly: 990},
}

// PriceFor looks up the subscription price. ok is false for an unknown
// plan/duration pair.
func PriceFor(plan, duration string) (amount int64, ok bool) {
	byDuration, ok := pricing[plan]
	if !ok {
		return 0, false
	}

	amount, ok = byDuration[duration]
	return amount, ok
}

// SubscriptionMonths converts a billing duration into the number of months a
// successful payment extends the subscription by.
func SubscriptionMonths(duration string) int {
	if duration == DurationYearly {
		return 12
	}
	return 1
}

// NewSubscription builds a PENDING subscription payment with a provider-style
// transaction reference and hosted-checkout URL.
func NewSubscription(userID, plan, duration string, method Method, amount int64) Payment {
	now := time.Now().UTC()
	txn := fmt.Sprintf("txn_%d_%s", now.UnixMilli(), randomRef(9))
	payURL := fmt.Sprintf("https://payment.example.com/pay/%d", now.UnixMilli())

	return Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		Currency:      "USD",
		Method:        method,
		Status:        StatusPending,
		Type:          TypeSubscription,
		Plan:          plan,
		Duration:      duration,
		TransactionID: &txn,
		PaymentURL:    &payURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

const refAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomRef(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = refAlphabet[rand.Intn(len(refAlphabet))]
	}
	return string(b)
}
