package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/marketbay/marketbay-backend/internal/models"
)

var (
	ErrDisputeNotFound = errors.New("dispute not found")
	// ErrDisputeStateChanged возвращается, когда статус спора изменился
	// между проверкой в сервисе и началом транзакции решения.
	ErrDisputeStateChanged = errors.New("dispute state changed")
)

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// NextSequence возвращает следующее значение последовательности номеров споров.
func (r *DisputeRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, `SELECT nextval('dispute_number_seq')`); err != nil {
		return 0, fmt.Errorf("dispute repository: next sequence %w", err)
	}
	return seq, nil
}

// Create сохраняет новый спор и помечает заказ как оспоренный
// в одной транзакции.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dispute repository: begin create %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO disputes (dispute_number, order_id, product_id, customer_id, seller_id,
		                      reason, description, evidence, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, d.DisputeNumber, d.OrderID, d.ProductID, d.CustomerID, d.SellerID,
		d.Reason, d.Description, d.Evidence, d.Status, d.Priority).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("dispute repository: insert dispute %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, has_dispute = TRUE, dispute_id = $3, dispute_opened_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, d.OrderID, models.OrderStatusDisputed, d.ID)
	if err != nil {
		return fmt.Errorf("dispute repository: mark order disputed %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_updates (order_id, status, actor_id, note)
		VALUES ($1, $2, $3, $4)
	`, d.OrderID, models.OrderStatusDisputed, d.CustomerID, "Открыт спор "+d.DisputeNumber)
	if err != nil {
		return fmt.Errorf("dispute repository: order audit %w", err)
	}

	return tx.Commit()
}

// GetByID возвращает спор по идентификатору. Мягко удалённые споры не видны.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1 AND is_deleted = FALSE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get by id %w", err)
	}
	return &d, nil
}

// GetActiveByOrderID возвращает активный (не удалённый) спор по заказу.
func (r *DisputeRepository) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE order_id = $1 AND is_deleted = FALSE`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get by order %w", err)
	}
	return &d, nil
}

// DisputeFilter параметры выборки споров.
type DisputeFilter struct {
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
	Escalated  *bool
	Limit      int
	Offset     int
}

// List возвращает споры по фильтру, новые первыми.
func (r *DisputeRepository) List(ctx context.Context, filter DisputeFilter) ([]models.Dispute, error) {
	query := `SELECT * FROM disputes WHERE is_deleted = FALSE`
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, filter.Priority)
		argIndex++
	}
	if filter.AssignedTo != nil {
		query += fmt.Sprintf(" AND assigned_to = $%d", argIndex)
		args = append(args, *filter.AssignedTo)
		argIndex++
	}
	if filter.Escalated != nil {
		query += fmt.Sprintf(" AND is_escalated = $%d", argIndex)
		args = append(args, *filter.Escalated)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	var disputes []models.Dispute
	if err := r.db.SelectContext(ctx, &disputes, query, args...); err != nil {
		return nil, fmt.Errorf("dispute repository: list %w", err)
	}
	return disputes, nil
}

// ListByUser возвращает споры, в которых пользователь является стороной.
func (r *DisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes
		WHERE (customer_id = $1 OR seller_id = $1) AND is_deleted = FALSE
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by user %w", err)
	}
	return disputes, nil
}

// AddMessage добавляет сообщение в тред и обновляет флаги ответов сторон
// в одной транзакции.
func (r *DisputeRepository) AddMessage(ctx context.Context, d *models.Dispute, msg *models.DisputeMessage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dispute repository: begin add message %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO dispute_messages (dispute_id, sender_id, sender_role, text, attachments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, msg.DisputeID, msg.SenderID, msg.SenderRole, msg.Text, msg.Attachments).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("dispute repository: insert message %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE disputes
		SET last_message_at = $2,
		    last_response_at = $2,
		    customer_responded = customer_responded OR $3,
		    seller_responded = seller_responded OR $4,
		    updated_at = NOW()
		WHERE id = $1
	`, d.ID, msg.CreatedAt,
		msg.SenderRole == models.DisputeRoleCustomer,
		msg.SenderRole == models.DisputeRoleSeller)
	if err != nil {
		return fmt.Errorf("dispute repository: update message flags %w", err)
	}

	return tx.Commit()
}

// ListMessages возвращает тред спора в хронологическом порядке.
func (r *DisputeRepository) ListMessages(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeMessage, error) {
	var messages []models.DisputeMessage
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM dispute_messages WHERE dispute_id = $1 ORDER BY created_at ASC
	`, disputeID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list messages %w", err)
	}
	return messages, nil
}

// Assign назначает спор администратору и переводит его в разбор.
func (r *DisputeRepository) Assign(ctx context.Context, id, adminID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes
		SET assigned_to = $2, assigned_at = NOW(), status = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id, adminID, models.DisputeStatusUnderReview)
	if err != nil {
		return fmt.Errorf("dispute repository: assign %w", err)
	}
	return requireAffected(res, ErrDisputeNotFound)
}

// SetStatus переводит спор в указанный статус (awaiting_response и т.п.).
func (r *DisputeRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes SET status = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE
	`, id, status)
	if err != nil {
		return fmt.Errorf("dispute repository: set status %w", err)
	}
	return requireAffected(res, ErrDisputeNotFound)
}

// Escalate поднимает приоритет спора до high. Допускается из любого
// незавершённого состояния.
func (r *DisputeRepository) Escalate(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes
		SET is_escalated = TRUE, escalated_at = NOW(), escalated_reason = $2,
		    priority = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE AND status NOT IN ($4, $5)
	`, id, reason, models.DisputePriorityHigh, models.DisputeStatusResolved, models.DisputeStatusClosed)
	if err != nil {
		return fmt.Errorf("dispute repository: escalate %w", err)
	}
	return requireAffected(res, ErrDisputeStateChanged)
}

// Close закрывает уже решённый спор.
func (r *DisputeRepository) Close(ctx context.Context, id, adminID uuid.UUID, note string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes
		SET status = $2, closed_by = $3, closed_at = NOW(), closure_note = $4, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE AND status = $5
	`, id, models.DisputeStatusClosed, adminID, note, models.DisputeStatusResolved)
	if err != nil {
		return fmt.Errorf("dispute repository: close %w", err)
	}
	return requireAffected(res, ErrDisputeStateChanged)
}

// SoftDelete скрывает спор из всех выборок по умолчанию.
func (r *DisputeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("dispute repository: soft delete %w", err)
	}
	return requireAffected(res, ErrDisputeNotFound)
}

// Stats возвращает количество споров по статусам.
func (r *DisputeRepository) Stats(ctx context.Context) (*models.DisputeStats, error) {
	var stats models.DisputeStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'open')              AS open,
			COUNT(*) FILTER (WHERE status = 'under_review')      AS under_review,
			COUNT(*) FILTER (WHERE status = 'awaiting_response') AS awaiting_response,
			COUNT(*) FILTER (WHERE status = 'resolved')          AS resolved,
			COUNT(*) FILTER (WHERE status = 'closed')            AS closed,
			COUNT(*) FILTER (WHERE is_escalated)                 AS escalated
		FROM disputes
		WHERE is_deleted = FALSE
	`)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: stats %w", err)
	}
	stats.ActiveDisputes = stats.Open + stats.UnderReview
	return &stats, nil
}

// ResolveParams параметры атомарного решения спора.
type ResolveParams struct {
	DisputeID    uuid.UUID
	AdminID      uuid.UUID
	Resolution   string
	Note         string
	RefundAmount decimal.Decimal // сумма возврата покупателю, ноль при решении в пользу продавца
}

// resolutionOutcome описывает движение денег и итоговое состояние заказа
// при решении спора.
type resolutionOutcome struct {
	RefundLeg    decimal.Decimal
	ReleaseLeg   decimal.Decimal
	OrderStatus  string
	EscrowStatus string
}

// resolveOutcome вычисляет денежные плечи решения. Деньги двигаются только
// пока эскроу по заказу удерживается: по заказу, завершённому до открытия
// спора, заморозка уже распущена, поэтому решение фиксируется на споре и
// заказе без движения средств, а размер возмещения остаётся записью на споре.
func resolveOutcome(order *models.Order, refund decimal.Decimal) resolutionOutcome {
	if order.EscrowStatus != models.EscrowStatusHeld {
		return resolutionOutcome{
			RefundLeg:    decimal.Zero,
			ReleaseLeg:   decimal.Zero,
			OrderStatus:  models.OrderStatusCompleted,
			EscrowStatus: order.EscrowStatus,
		}
	}

	outcome := resolutionOutcome{
		RefundLeg:    refund,
		ReleaseLeg:   order.TotalAmount.Sub(refund),
		OrderStatus:  models.OrderStatusCompleted,
		EscrowStatus: models.EscrowStatusReleased,
	}
	if refund.IsPositive() {
		outcome.OrderStatus = models.OrderStatusRefunded
		outcome.EscrowStatus = models.EscrowStatusRefunded
	}
	return outcome
}

// Resolve выполняет решение спора одной транзакцией: статус спора, статус и
// эскроу заказа, списание заморозки продавца и зачисление покупателю меняются
// все вместе или не меняются вовсе.
func (r *DisputeRepository) Resolve(ctx context.Context, p ResolveParams) (*models.Dispute, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: begin resolve %w", err)
	}
	defer tx.Rollback()

	var d models.Dispute
	err = tx.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1 AND is_deleted = FALSE FOR UPDATE`, p.DisputeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: lock dispute %w", err)
	}
	if !d.CanBeResolved() {
		return nil, ErrDisputeStateChanged
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, d.OrderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: lock order %w", err)
	}

	outcome := resolveOutcome(&order, p.RefundAmount)

	// Возврат покупателю: списание заморозки продавца плюс зачисление
	// покупателю — оба плеча в этой же транзакции.
	if outcome.RefundLeg.IsPositive() {
		if err := r.refundLeg(ctx, tx, d.SellerID, d.CustomerID, outcome.RefundLeg, d.OrderID); err != nil {
			return nil, err
		}
	}
	// Остаток (или вся сумма при решении в пользу продавца) освобождается.
	if outcome.ReleaseLeg.IsPositive() {
		if err := r.releaseLeg(ctx, tx, d.SellerID, outcome.ReleaseLeg, d.OrderID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	err = tx.GetContext(ctx, &d, `
		UPDATE disputes
		SET status = $2, resolution = $3, resolution_note = $4, refund_amount = $5,
		    resolved_by = $6, resolved_at = $7, version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, d.ID, models.DisputeStatusResolved, p.Resolution, p.Note, p.RefundAmount, p.AdminID, now)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: update dispute %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, escrow_status = $3, updated_at = NOW() WHERE id = $1
	`, order.ID, outcome.OrderStatus, outcome.EscrowStatus)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: update order %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_updates (order_id, status, actor_id, note)
		VALUES ($1, $2, $3, $4)
	`, order.ID, outcome.OrderStatus, p.AdminID, "Спор "+d.DisputeNumber+" решён: "+p.Resolution)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: order audit %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("dispute repository: commit resolve %w", err)
	}
	return &d, nil
}

// refundLeg списывает заморозку продавца и зачисляет покупателю сумму возврата.
func (r *DisputeRepository) refundLeg(ctx context.Context, tx *sqlx.Tx, sellerID, customerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error {
	var seller models.Wallet
	err := tx.GetContext(ctx, &seller, `SELECT * FROM wallets WHERE user_id = $1 FOR UPDATE`, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWalletNotFound
	}
	if err != nil {
		return fmt.Errorf("dispute repository: lock seller wallet %w", err)
	}
	if seller.PendingBalance.LessThan(amount) {
		return models.ErrInsufficientPending
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET pending_balance = pending_balance - $2, last_transaction_at = NOW(),
		    version = version + 1, updated_at = NOW()
		WHERE user_id = $1
	`, sellerID, amount)
	if err != nil {
		return fmt.Errorf("dispute repository: debit seller pending %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (wallet_id, order_id, type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, seller.ID, orderID, models.TransactionTypeRefund, amount, models.TransactionStatusRefunded,
		"Возврат покупателю по решению спора")
	if err != nil {
		return fmt.Errorf("dispute repository: seller refund entry %w", err)
	}

	// Кошелёк покупателя создаётся лениво, как и при любом первом
	// финансовом событии.
	var customer models.Wallet
	err = tx.GetContext(ctx, &customer, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`, customerID)
	if err != nil {
		return fmt.Errorf("dispute repository: customer wallet %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET available_balance = available_balance + $2, last_transaction_at = NOW(),
		    version = version + 1, updated_at = NOW()
		WHERE user_id = $1
	`, customerID, amount)
	if err != nil {
		return fmt.Errorf("dispute repository: credit customer %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (wallet_id, order_id, type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, customer.ID, orderID, models.TransactionTypeRefund, amount, models.TransactionStatusCompleted,
		"Возврат средств по решению спора")
	if err != nil {
		return fmt.Errorf("dispute repository: customer refund entry %w", err)
	}

	return nil
}

// releaseLeg освобождает заморозку продавца в доступный баланс.
func (r *DisputeRepository) releaseLeg(ctx context.Context, tx *sqlx.Tx, sellerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error {
	var seller models.Wallet
	err := tx.GetContext(ctx, &seller, `SELECT * FROM wallets WHERE user_id = $1 FOR UPDATE`, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWalletNotFound
	}
	if err != nil {
		return fmt.Errorf("dispute repository: lock seller wallet %w", err)
	}
	if seller.PendingBalance.LessThan(amount) {
		return models.ErrInsufficientPending
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET pending_balance = pending_balance - $2,
		    available_balance = available_balance + $2,
		    total_earned = total_earned + $2,
		    last_transaction_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE user_id = $1
	`, sellerID, amount)
	if err != nil {
		return fmt.Errorf("dispute repository: release seller escrow %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (wallet_id, order_id, type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, seller.ID, orderID, models.TransactionTypeBookingPayment, amount, models.TransactionStatusReleased,
		"Выплата по решению спора")
	if err != nil {
		return fmt.Errorf("dispute repository: seller release entry %w", err)
	}

	return nil
}

// requireAffected превращает нулевое число затронутых строк в ошибку.
func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
