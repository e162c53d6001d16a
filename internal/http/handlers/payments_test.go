package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/domain/payment"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
	"github.com/MrHoror07/sevenaiproo/internal/http/handlers"
	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
)

// Shared fakes for the payment/video handler tests.

type fakePaymentsRepo struct {
	createFn     func(ctx context.Context, p payment.Payment) error
	getForUserFn func(ctx context.Context, id, userID string) (payment.Payment, error)
	listFn       func(ctx context.Context, userID string, limit int) ([]payment.Payment, error)
	markPaidFn   func(ctx context.Context, id string, paidAt time.Time) error
	markStatusFn func(ctx context.Context, id string, status payment.Status) error
}

func (f *fakePaymentsRepo) Create(ctx context.Context, p payment.Payment) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePaymentsRepo) GetForUser(ctx context.Context, id, userID string) (payment.Payment, error) {
	if f.getForUserFn != nil {
		return f.getForUserFn(ctx, id, userID)
	}
	return payment.Payment{}, postgres.ErrPaymentNotFound
}

func (f *fakePaymentsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]payment.Payment, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (f *fakePaymentsRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	if f.markPaidFn != nil {
		return f.markPaidFn(ctx, id, paidAt)
	}
	return nil
}

func (f *fakePaymentsRepo) MarkStatus(ctx context.Context, id string, status payment.Status) error {
	if f.markStatusFn != nil {
		return f.markStatusFn(ctx, id, status)
	}
	return nil
}

type fakeSubscriptions struct {
	updateFn func(ctx context.Context, id, plan string, ends time.Time) error
}

func (f *fakeSubscriptions) UpdateSubscription(ctx context.Context, id, plan string, ends time.Time) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, plan, ends)
	}
	return nil
}

type fakeEnqueuer struct {
	created []jobs.CreateRequest
}

func (f *fakeEnqueuer) Create(ctx context.Context, req jobs.CreateRequest) (jobs.Job, error) {
	f.created = append(f.created, req)
	return jobs.New(req), nil
}

type fakeNotifier struct {
	sent []notifications.SendInput
}

func (f *fakeNotifier) Send(ctx context.Context, in notifications.SendInput) error {
	f.sent = append(f.sent, in)
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}

func activeUser() user.User {
	return user.User{ID: "u1", Email: "u@example.com", Role: user.RoleUser, Status: user.StatusActive}
}

func TestCreatePaymentHandler(t *testing.T) {
	t.Run("prices come from the server-side table", func(t *testing.T) {
		var stored payment.Payment

		repo := &fakePaymentsRepo{
			createFn: func(ctx context.Context, p payment.Payment) error {
				stored = p
				return nil
			},
		}
		enq := &fakeEnqueuer{}
		rec := &fakeRecorder{}

		h := handlers.NewPaymentsHandler(repo, &fakeSubscriptions{}, enq, &fakeNotifier{}, rec)
		r := setupRouter(http.MethodPost, "/payments", withUser(activeUser()), h.Create)

		w := doJSON(t, r, http.MethodPost, "/payments",
			`{"plan":"PRO","duration":"monthly","method":"CREDIT_CARD","amount":1}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
		}

		// client-supplied amount is ignored
		if stored.Amount != 29 {
			t.Fatalf("amount = %d, want table price 29", stored.Amount)
		}
		if stored.Status != payment.StatusPending {
			t.Fatalf("status = %s, want PENDING", stored.Status)
		}
		if stored.TransactionID == nil || *stored.TransactionID == "" {
			t.Fatal("expected a transaction reference")
		}

		if len(enq.created) != 1 || enq.created[0].Type != jobs.JobPaymentExpire {
			t.Fatalf("expected one payment.expire job, got %+v", enq.created)
		}
		if !enq.created[0].RunAt.After(time.Now().Add(23 * time.Hour)) {
			t.Fatalf("expiry job should be delayed, runAt = %v", enq.created[0].RunAt)
		}

		if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionPaymentPending {
			t.Fatalf("expected PAYMENT_PENDING audit entry, got %+v", rec.entries)
		}
	})

	t.Run("unknown plan rejected", func(t *testing.T) {
		h := handlers.NewPaymentsHandler(&fakePaymentsRepo{}, &fakeSubscriptions{}, &fakeEnqueuer{}, &fakeNotifier{}, &fakeRecorder{})
		r := setupRouter(http.MethodPost, "/payments", withUser(activeUser()), h.Create)

		w := doJSON(t, r, http.MethodPost, "/payments",
			`{"plan":"ENTERPRISE","duration":"monthly","method":"CREDIT_CARD"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestVerifyPaymentHandler(t *testing.T) {
	txn := "txn_123_abcdef"

	pending := func() payment.Payment {
		return payment.Payment{
			ID:            "p1",
			UserID:        "u1",
			Amount:        29,
			Plan:          "PRO",
			Duration:      payment.DurationMonthly,
			Status:        payment.StatusPending,
			TransactionID: &txn,
		}
	}

	t.Run("matching reference settles and extends the subscription", func(t *testing.T) {
		var paidID string
		var subPlan string
		var subEnds time.Time

		repo := &fakePaymentsRepo{
			getForUserFn: func(ctx context.Context, id, userID string) (payment.Payment, error) {
				return pending(), nil
			},
			markPaidFn: func(ctx context.Context, id string, paidAt time.Time) error {
				paidID = id
				return nil
			},
		}
		subs := &fakeSubscriptions{
			updateFn: func(ctx context.Context, id, plan string, ends time.Time) error {
				subPlan = plan
				subEnds = ends
				return nil
			},
		}
		notifier := &fakeNotifier{}
		rec := &fakeRecorder{}

		h := handlers.NewPaymentsHandler(repo, subs, &fakeEnqueuer{}, notifier, rec)
		r := setupRouter(http.MethodPost, "/payments/:id/verify", withUser(activeUser()), h.Verify)

		w := doJSON(t, r, http.MethodPost, "/payments/p1/verify", `{"transactionId":"`+txn+`"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
		}
		if paidID != "p1" {
			t.Fatalf("MarkPaid called with %q, want p1", paidID)
		}
		if subPlan != "PRO" {
			t.Fatalf("subscription plan = %q, want PRO", subPlan)
		}
		if until := time.Until(subEnds); until < 27*24*time.Hour || until > 32*24*time.Hour {
			t.Fatalf("subscription should extend about one month, got %v", until)
		}
		if len(notifier.sent) != 1 {
			t.Fatalf("expected one notification, got %d", len(notifier.sent))
		}
		if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionPaymentSuccess {
			t.Fatalf("expected PAYMENT_SUCCESS audit entry, got %+v", rec.entries)
		}
	})

	t.Run("mismatched reference fails the payment", func(t *testing.T) {
		var failedStatus payment.Status

		repo := &fakePaymentsRepo{
			getForUserFn: func(ctx context.Context, id, userID string) (payment.Payment, error) {
				return pending(), nil
			},
			markStatusFn: func(ctx context.Context, id string, status payment.Status) error {
				failedStatus = status
				return nil
			},
		}
		rec := &fakeRecorder{}

		h := handlers.NewPaymentsHandler(repo, &fakeSubscriptions{}, &fakeEnqueuer{}, &fakeNotifier{}, rec)
		r := setupRouter(http.MethodPost, "/payments/:id/verify", withUser(activeUser()), h.Verify)

		w := doJSON(t, r, http.MethodPost, "/payments/p1/verify", `{"transactionId":"txn_wrong"}`)

		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402", w.Code)
		}
		if failedStatus != payment.StatusFailed {
			t.Fatalf("payment marked %q, want FAILED", failedStatus)
		}
		if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionPaymentFailed {
			t.Fatalf("expected PAYMENT_FAILED audit entry, got %+v", rec.entries)
		}
	})

	t.Run("already settled payment conflicts", func(t *testing.T) {
		repo := &fakePaymentsRepo{
			getForUserFn: func(ctx context.Context, id, userID string) (payment.Payment, error) {
				p := pending()
				p.Status = payment.StatusSuccess
				return p, nil
			},
		}

		h := handlers.NewPaymentsHandler(repo, &fakeSubscriptions{}, &fakeEnqueuer{}, &fakeNotifier{}, &fakeRecorder{})
		r := setupRouter(http.MethodPost, "/payments/:id/verify", withUser(activeUser()), h.Verify)

		w := doJSON(t, r, http.MethodPost, "/payments/p1/verify", `{"transactionId":"`+txn+`"}`)

		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})

	t.Run("someone else's payment is not found", func(t *testing.T) {
		repo := &fakePaymentsRepo{
			getForUserFn: func(ctx context.Context, id, userID string) (payment.Payment, error) {
				return payment.Payment{}, postgres.ErrPaymentNotFound
			},
		}

		h := handlers.NewPaymentsHandler(repo, &fakeSubscriptions{}, &fakeEnqueuer{}, &fakeNotifier{}, &fakeRecorder{})
		r := setupRouter(http.MethodPost, "/payments/:id/verify", withUser(activeUser()), h.Verify)

		w := doJSON(t, r, http.MethodPost, "/payments/p1/verify", `{"transactionId":"`+txn+`"}`)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestPaymentHistoryHandler(t *testing.T) {
	repo := &fakePaymentsRepo{
		listFn: func(ctx context.Context, userID string, limit int) ([]payment.Payment, error) {
			if userID != "u1" {
				t.Fatalf("history queried for %q, want u1", userID)
			}
			return []payment.Payment{{ID: "p1"}, {ID: "p2"}}, nil
		},
	}

	h := handlers.NewPaymentsHandler(repo, &fakeSubscriptions{}, &fakeEnqueuer{}, &fakeNotifier{}, &fakeRecorder{})
	r := setupRouter(http.MethodGet, "/payments", withUser(activeUser()), h.History)

	w := doJSON(t, r, http.MethodGet, "/payments", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Payments []payment.Payment `json:"payments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(resp.Payments))
	}
}
