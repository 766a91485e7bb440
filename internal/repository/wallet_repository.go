package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marketbay/marketbay-backend/internal/models"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrVersionConflict возвращается, когда кошелёк был изменён конкурентно
	// между чтением и сохранением. Вызывающий код перечитывает и повторяет.
	ErrVersionConflict = errors.New("wallet version conflict")
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreateByUserID возвращает кошелёк пользователя, лениво создавая его
// при первом финансовом событии.
func (r *WalletRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &wallet, query, userID); err != nil {
		return nil, fmt.Errorf("wallet repository: get or create %w", err)
	}
	return &wallet, nil
}

// GetByUserID возвращает кошелёк без создания.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.GetContext(ctx, &wallet, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("wallet repository: get by user %w", err)
	}
	return &wallet, nil
}

// Save сохраняет мутированный кошелёк вместе с записью журнала в одной
// транзакции. Обновление требует версии, прочитанной перед мутацией:
// при несовпадении ни баланс, ни журнал не меняются.
func (r *WalletRepository) Save(ctx context.Context, wallet *models.Wallet, entry *models.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wallet repository: begin save %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET available_balance = $2,
		    pending_balance = $3,
		    total_earned = $4,
		    total_withdrawn = $5,
		    last_transaction_at = $6,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $7
	`, wallet.ID, wallet.AvailableBalance, wallet.PendingBalance,
		wallet.TotalEarned, wallet.TotalWithdrawn, wallet.LastTransactionAt, wallet.Version)
	if err != nil {
		return fmt.Errorf("wallet repository: save balances %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("wallet repository: save rows affected %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO transactions (wallet_id, order_id, reference, type, amount, status, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::jsonb))
		RETURNING id, created_at
	`, entry.WalletID, entry.OrderID, entry.Reference, entry.Type,
		entry.Amount, entry.Status, entry.Description, entry.Metadata).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("wallet repository: append transaction %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wallet repository: commit save %w", err)
	}

	wallet.Version++
	return nil
}

// ListTransactions возвращает журнал кошелька, новые записи первыми.
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list transactions %w", err)
	}
	return transactions, nil
}

// Deactivate помечает кошелёк неактивным. Кошельки никогда не удаляются.
func (r *WalletRepository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE wallets SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("wallet repository: deactivate %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("wallet repository: deactivate rows affected %w", err)
	}
	if affected == 0 {
		return ErrWalletNotFound
	}
	return nil
}
