package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/MrHoror07/sevenaiproo/internal/domain/payment"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type PaymentStore interface {
	Create(ctx context.Context, p payment.Payment) error
	GetForUser(ctx context.Context, id, userID string) (payment.Payment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]payment.Payment, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	MarkStatus(ctx context.Context, id string, status payment.Status) error
}

type SubscriptionWriter interface {
	UpdateSubscription(ctx context.Context, id, plan string, ends time.Time) error
}

type JobEnqueuer interface {
	Create(ctx context.Context, req jobs.CreateRequest) (jobs.Job, error)
}

// pendingPaymentTTL is how long a checkout stays open before the delayed
// expiry job settles it as EXPIRED.
const pendingPaymentTTL = 24 * time.Hour

const paymentHistoryLimit = 50

type PaymentsHandler struct {
	payments PaymentStore
	users    SubscriptionWriter
	enqueue  JobEnqueuer
	notifier notifications.Notifier
	audit    audit.Recorder
}

func NewPaymentsHandler(payments PaymentStore, users SubscriptionWriter, enqueue JobEnqueuer, notifier notifications.Notifier, rec audit.Recorder) *PaymentsHandler {
	return &PaymentsHandler{
		payments: payments,
		users:    users,
		enqueue:  enqueue,
		notifier: notifier,
		audit:    rec,
	}
}

type CreatePaymentRequest struct {
	Plan     string `json:"plan" binding:"required,oneof=BASIC PRO PREMIUM"`
	Duration string `json:"duration" binding:"required,oneof=monthly yearly"`
	Method   string `json:"method" binding:"required,oneof=QRIS MOBILE_BANKING CREDIT_CARD EWALLET"`
}

// Create opens a PENDING checkout for a subscription. The price comes from
// the server-side table; the client never sends an amount.
func (h *PaymentsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req CreatePaymentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	amount, ok := payment.PriceFor(req.Plan, req.Duration)
	if !ok {
		RespondBadRequest(ctx, "Unknown plan or duration", nil)
		return
	}

	p := payment.NewSubscription(u.ID, req.Plan, req.Duration, payment.Method(req.Method), amount)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if err := h.payments.Create(cctx, p); err != nil {
		RespondInternal(ctx, "Could not create payment")
		return
	}

	// schedule expiry; a failed enqueue leaves the payment open but usable
	payload, err := jobs.EncodePayload(jobs.JobPaymentExpire, jobs.PaymentExpirePayload{PaymentID: p.ID})
	if err == nil {
		_, _ = h.enqueue.Create(cctx, jobs.CreateRequest{
			Type:    jobs.JobPaymentExpire,
			Payload: payload,
			RunAt:   time.Now().UTC().Add(pendingPaymentTTL),
			UserID:  u.ID,
		})
	}

	h.record(cctx, ctx, u.ID, audit.ActionPaymentPending, p)

	ctx.JSON(http.StatusCreated, gin.H{"payment": p})
}

func (h *PaymentsHandler) History(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	list, err := h.payments.ListByUser(cctx, u.ID, paymentHistoryLimit)

	if err != nil {
		RespondInternal(ctx, "Could not load payments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payments": list})
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

// Verify settles a pending checkout. The presented transaction reference must
// echo the one issued at creation; a mismatch fails the payment.
func (h *PaymentsHandler) Verify(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req VerifyPaymentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	p, err := h.payments.GetForUser(cctx, ctx.Param("id"), u.ID)

	if err != nil {
		if errors.Is(err, postgres.ErrPaymentNotFound) {
			RespondNotFound(ctx, "Payment not found")
			return
		}

		RespondInternal(ctx, "Could not verify payment")
		return
	}

	if p.Status != payment.StatusPending {
		RespondConflict(ctx, "payment_settled", "Payment is no longer pending.")
		return
	}

	if p.TransactionID == nil || *p.TransactionID != req.TransactionID {
		_ = h.payments.MarkStatus(cctx, p.ID, payment.StatusFailed)
		p.Status = payment.StatusFailed

		h.record(cctx, ctx, u.ID, audit.ActionPaymentFailed, p)

		RespondError(ctx, http.StatusPaymentRequired, "payment_failed", "Payment could not be verified.", nil)
		return
	}

	now := time.Now().UTC()

	if err := h.payments.MarkPaid(cctx, p.ID, now); err != nil {
		RespondInternal(ctx, "Could not verify payment")
		return
	}

	p.Status = payment.StatusSuccess
	p.PaidAt = &now

	ends := now.AddDate(0, payment.SubscriptionMonths(p.Duration), 0)

	if err := h.users.UpdateSubscription(cctx, u.ID, p.Plan, ends); err != nil {
		RespondInternal(ctx, "Could not activate subscription")
		return
	}

	h.record(cctx, ctx, u.ID, audit.ActionPaymentSuccess, p)

	_ = h.notifier.Send(cctx, notifications.SendInput{
		UserID:  u.ID,
		Title:   "Payment received",
		Message: "Your " + p.Plan + " subscription is now active.",
		Type:    notification.TypePayment,
	})

	ctx.JSON(http.StatusOK, gin.H{
		"payment":          p,
		"subscriptionEnds": ends,
	})
}

func (h *PaymentsHandler) record(cctx context.Context, ctx *gin.Context, userID, action string, p payment.Payment) {
	meta, _ := json.Marshal(gin.H{"plan": p.Plan, "amount": p.Amount, "duration": p.Duration})

	e := audit.NewEntry(userID, action)
	e.Resource = "payment"
	e.ResourceID = p.ID
	e.Metadata = meta
	e.IPAddress = ctx.ClientIP()
	e.UserAgent = ctx.GetHeader("User-Agent")

	h.audit.Record(cctx, e)
}
