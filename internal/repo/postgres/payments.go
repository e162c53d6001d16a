package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/domain/payment"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentsRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentsRepo(pool *pgxpool.Pool) *PaymentsRepo {
	return &PaymentsRepo{pool: pool}
}

const paymentColumns = `id, user_id, amount, currency, method, status, type, plan, duration,
	transaction_id, payment_url, paid_at, created_at, updated_at`

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.Type,
		&p.Plan,
		&p.Duration,
		&p.TransactionID,
		&p.PaymentURL,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (r *PaymentsRepo) Create(ctx context.Context, p payment.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (id, user_id, amount, currency, method, status, type, plan,
			duration, transaction_id, payment_url, paid_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.UserID, p.Amount, p.Currency, p.Method, p.Status, p.Type, p.Plan,
		p.Duration, p.TransactionID, p.PaymentURL, p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)

	return err
}

func (r *PaymentsRepo) GetForUser(ctx context.Context, id, userID string) (payment.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 AND user_id = $2`,
		id, userID,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, ErrPaymentNotFound
		}
		return payment.Payment{}, err
	}

	return p, nil
}

func (r *PaymentsRepo) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`,
		id,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, ErrPaymentNotFound
		}
		return payment.Payment{}, err
	}

	return p, nil
}

func (r *PaymentsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]payment.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		userID, limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]payment.Payment, 0, limit)

	for rows.Next() {
		p, err := scanPayment(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

// MarkPaid records a verified payment.
func (r *PaymentsRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments
		 SET status = $2, paid_at = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, payment.StatusSuccess, paidAt,
	)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentsRepo) MarkStatus(ctx context.Context, id string, status payment.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ExpireIfPending flips a still-pending payment to EXPIRED. Returns false
// when the payment is absent or already settled; that is not an error for
// the expiry job.
func (r *PaymentsRepo) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, payment.StatusExpired, payment.StatusPending,
	)

	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
