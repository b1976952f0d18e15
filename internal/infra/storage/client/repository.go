package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const constraintCompanyPhone = "clients_company_phone_key"

var clientColumns = []string{
	"id",
	"company_id",
	"name",
	"phone",
	"normalized_phone",
	"email",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий клиентов компании
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert находит или создает клиента по (company_id, normalized_phone) одним запросом.
// У существующего клиента обновляются имя и сырой телефон, email заменяется, только если передан.
// Конкурентные вызовы с одним телефоном всегда возвращают одну и ту же строку.
func (r *Repository) Upsert(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clients").
		Columns("company_id", "name", "phone", "normalized_phone", "email").
		Values(c.CompanyID, c.Name, c.Phone, c.NormalizedPhone, c.Email).
		Suffix(`ON CONFLICT (company_id, normalized_phone) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			email = COALESCE(EXCLUDED.email, clients.email),
			updated_at = NOW()
		RETURNING ` + strings.Join(clientColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	saved, err := scanClient(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return saved, nil
}

// FindByNormalizedPhone ищет клиента по нормализованному телефону
func (r *Repository) FindByNormalizedPhone(ctx context.Context, companyID int64, normalized string) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(clientColumns...).
		From("clients").
		Where(squirrel.Eq{"company_id": companyID, "normalized_phone": normalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByNormalizedPhone - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanClient(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindByNormalizedPhone - scan client: %w", ErrScanRow, err)
	}

	return c, nil
}

// FindLegacyByPhones ищет старые записи без нормализованного телефона
// по набору возможных написаний сырого телефона. Сначала самые новые.
func (r *Repository) FindLegacyByPhones(ctx context.Context, companyID int64, phones []string) ([]*domain.Client, error) {
	if len(phones) == 0 {
		return []*domain.Client{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(clientColumns...).
		From("clients").
		Where(squirrel.Eq{"company_id": companyID, "phone": phones}).
		Where(squirrel.Eq{"normalized_phone": nil}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindLegacyByPhones - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindLegacyByPhones - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanClients(rows)
}

// ListLegacy возвращает клиентов компании без нормализованного телефона
func (r *Repository) ListLegacy(ctx context.Context, companyID int64) ([]*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(clientColumns...).
		From("clients").
		Where(squirrel.Eq{"company_id": companyID, "normalized_phone": nil}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListLegacy - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListLegacy - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanClients(rows)
}

// SetNormalizedPhone проставляет нормализованный телефон клиенту
func (r *Repository) SetNormalizedPhone(ctx context.Context, id int64, normalized string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("clients").
		Set("normalized_phone", normalized).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetNormalizedPhone - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err, constraintCompanyPhone) {
			return fmt.Errorf("%w: SetNormalizedPhone - %v", ErrPhoneTaken, err)
		}
		return fmt.Errorf("%w: SetNormalizedPhone - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetNormalizedPhone - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// DeleteByIDs удаляет клиентов; записи на них должны быть перенесены заранее
func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("clients").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - execute delete: %w", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var (
		c          domain.Client
		normalized sql.NullString
		email      sql.NullString
		notes      sql.NullString
	)

	err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.Name,
		&c.Phone,
		&normalized,
		&email,
		&notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if normalized.Valid {
		c.NormalizedPhone = &normalized.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}

	return &c, nil
}

func scanClients(rows *sql.Rows) ([]*domain.Client, error) {
	clients := make([]*domain.Client, 0)

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanClients - scan row: %v", ErrScanRow, err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanClients - rows error: %w", ErrScanRow, err)
	}

	return clients, nil
}
