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

var ErrRedFlagNotFound = errors.New("red flag not found")

type RedFlagRepository struct {
	db *sqlx.DB
}

func NewRedFlagRepository(db *sqlx.DB) *RedFlagRepository {
	return &RedFlagRepository{db: db}
}

// Create сохраняет новый красный флаг.
func (r *RedFlagRepository) Create(ctx context.Context, f *models.RedFlag) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO red_flags (type, severity, flagged_user_id, flagged_user_role,
		                       related_user_id, related_user_role, trigger_source, reporter_id,
		                       order_id, payment_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, f.Type, f.Severity, f.FlaggedUserID, f.FlaggedUserRole,
		f.RelatedUserID, f.RelatedUserRole, f.TriggerSource, f.ReporterID,
		f.OrderID, f.PaymentID, f.Title, f.Description, f.Status).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("red flag repository: create %w", err)
	}
	return nil
}

// GetByID возвращает флаг по идентификатору.
func (r *RedFlagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RedFlag, error) {
	var f models.RedFlag
	err := r.db.GetContext(ctx, &f, `SELECT * FROM red_flags WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRedFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("red flag repository: get by id %w", err)
	}
	return &f, nil
}

// RedFlagFilter параметры выборки флагов.
type RedFlagFilter struct {
	Status        string
	Severity      string
	Type          string
	FlaggedUserID *uuid.UUID
	AssignedTo    *uuid.UUID
	Limit         int
	Offset        int
}

// List возвращает флаги по фильтру, новые первыми.
func (r *RedFlagRepository) List(ctx context.Context, filter RedFlagFilter) ([]models.RedFlag, error) {
	query := `SELECT * FROM red_flags WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Severity != "" {
		query += fmt.Sprintf(" AND severity = $%d", argIndex)
		args = append(args, filter.Severity)
		argIndex++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.FlaggedUserID != nil {
		query += fmt.Sprintf(" AND flagged_user_id = $%d", argIndex)
		args = append(args, *filter.FlaggedUserID)
		argIndex++
	}
	if filter.AssignedTo != nil {
		query += fmt.Sprintf(" AND assigned_to = $%d", argIndex)
		args = append(args, *filter.AssignedTo)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	var flags []models.RedFlag
	if err := r.db.SelectContext(ctx, &flags, query, args...); err != nil {
		return nil, fmt.Errorf("red flag repository: list %w", err)
	}
	return flags, nil
}

// Assign назначает флаг администратору и переводит в разбор.
func (r *RedFlagRepository) Assign(ctx context.Context, id, adminID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE red_flags
		SET assigned_to = $2, assigned_at = NOW(), status = $3, updated_at = NOW()
		WHERE id = $1
	`, id, adminID, models.RedFlagStatusUnderReview)
	if err != nil {
		return fmt.Errorf("red flag repository: assign %w", err)
	}
	return requireAffected(res, ErrRedFlagNotFound)
}

// UpdateStatus меняет статус флага.
func (r *RedFlagRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE red_flags SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("red flag repository: update status %w", err)
	}
	return requireAffected(res, ErrRedFlagNotFound)
}

// Resolve фиксирует решение по флагу.
func (r *RedFlagRepository) Resolve(ctx context.Context, id, adminID uuid.UUID, status, action, details string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE red_flags
		SET status = $2, resolution_action = $3, resolution_details = NULLIF($4, ''),
		    resolved_by = $5, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, status, action, details, adminID)
	if err != nil {
		return fmt.Errorf("red flag repository: resolve %w", err)
	}
	return requireAffected(res, ErrRedFlagNotFound)
}

// AddNote добавляет заметку администратора.
func (r *RedFlagRepository) AddNote(ctx context.Context, note *models.RedFlagNote) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO red_flag_notes (red_flag_id, author_id, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, note.RedFlagID, note.AuthorID, note.Note).
		Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("red flag repository: add note %w", err)
	}
	return nil
}

// ListNotes возвращает заметки по флагу в хронологическом порядке.
func (r *RedFlagRepository) ListNotes(ctx context.Context, redFlagID uuid.UUID) ([]models.RedFlagNote, error) {
	var notes []models.RedFlagNote
	err := r.db.SelectContext(ctx, &notes, `
		SELECT * FROM red_flag_notes WHERE red_flag_id = $1 ORDER BY created_at ASC
	`, redFlagID)
	if err != nil {
		return nil, fmt.Errorf("red flag repository: list notes %w", err)
	}
	return notes, nil
}

// Stats возвращает количество флагов по статусам и тяжёлым степеням.
func (r *RedFlagRepository) Stats(ctx context.Context) (*models.RedFlagStats, error) {
	var stats models.RedFlagStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'open')         AS open,
			COUNT(*) FILTER (WHERE status = 'under_review') AS under_review,
			COUNT(*) FILTER (WHERE status = 'resolved')     AS resolved,
			COUNT(*) FILTER (WHERE status = 'dismissed')    AS dismissed,
			COUNT(*) FILTER (WHERE status = 'escalated')    AS escalated,
			COUNT(*) FILTER (WHERE status = 'action_taken') AS action_taken,
			COUNT(*) FILTER (WHERE severity = 'critical')   AS critical,
			COUNT(*) FILTER (WHERE severity = 'high')       AS high
		FROM red_flags
	`)
	if err != nil {
		return nil, fmt.Errorf("red flag repository: stats %w", err)
	}
	return &stats, nil
}
