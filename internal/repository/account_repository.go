package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"avito-notify/internal/database"
	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
	"avito-notify/pkg/txs"
)

type AccountRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewAccountRepository(db *database.PostgresDB) *AccountRepository {
	return &AccountRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureByAvitoID создаёт аккаунт или обновляет его имя, если аккаунт уже есть.
// Пустое имя существующую запись не затирает.
func (r *AccountRepository) EnsureByAvitoID(ctx context.Context, avitoUserID int64, name string) (*models.Account, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	insertQuery := r.sq.Insert("accounts").
		Columns("avito_user_id", "name", "created_at", "updated_at").
		Values(avitoUserID, name, now, now).
		Suffix(`ON CONFLICT (avito_user_id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), accounts.name),
			updated_at = EXCLUDED.updated_at
		RETURNING id, avito_user_id, COALESCE(name, ''), COALESCE(display_name, ''), created_at, updated_at`)

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "создание аккаунта", Cause: err}
	}

	account := &models.Account{}

	err = querier.QueryRow(ctx, query, args...).Scan(
		&account.ID,
		&account.AvitoUserID,
		&account.Name,
		&account.DisplayName,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "создание аккаунта", Cause: err}
	}

	return account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id)
}

func (r *AccountRepository) FindByAvitoID(ctx context.Context, avitoUserID int64) (*models.Account, error) {
	return r.findOne(ctx, sq.Eq{"avito_user_id": avitoUserID}, avitoUserID)
}

func (r *AccountRepository) findOne(ctx context.Context, where sq.Eq, key int64) (*models.Account, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"id", "avito_user_id", "COALESCE(name, '')", "COALESCE(display_name, '')", "created_at", "updated_at").
		From("accounts").
		Where(where)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск аккаунта", Cause: err}
	}

	account := &models.Account{}

	err = querier.QueryRow(ctx, query, args...).Scan(
		&account.ID,
		&account.AvitoUserID,
		&account.Name,
		&account.DisplayName,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrAccountNotFound{AvitoUserID: key}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск аккаунта", Cause: err}
	}

	return account, nil
}

func (r *AccountRepository) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("accounts").
		Set("display_name", displayName).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "переименование аккаунта", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "переименование аккаунта", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrAccountNotFound{AvitoUserID: id}
	}

	return nil
}

// Delete удаляет аккаунт вместе с привязками и напоминаниями (ON DELETE CASCADE).
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("accounts").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление аккаунта", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление аккаунта", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrAccountNotFound{AvitoUserID: id}
	}

	return nil
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"id", "avito_user_id", "COALESCE(name, '')", "COALESCE(display_name, '')", "created_at", "updated_at").
		From("accounts").
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "список аккаунтов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список аккаунтов", Cause: err}
	}
	defer rows.Close()

	var accounts []*models.Account

	for rows.Next() {
		account := &models.Account{}

		err := rows.Scan(
			&account.ID,
			&account.AvitoUserID,
			&account.Name,
			&account.DisplayName,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "аккаунта", Cause: err}
		}

		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список аккаунтов", Cause: err}
	}

	return accounts, nil
}
