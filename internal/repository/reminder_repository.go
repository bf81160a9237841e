package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"avito-notify/internal/database"
	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
	"avito-notify/pkg/txs"
)

// ReminderRepository хранит открытые напоминания, по одному на пару
// (аккаунт, диалог Avito). Условные INSERT/UPDATE делают операции
// идемпотентными без блокировок на стороне приложения.
type ReminderRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewReminderRepository(db *database.PostgresDB) *ReminderRepository {
	return &ReminderRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create открывает напоминание, если его ещё нет. Повторный вызов для
// того же диалога first_ts не сдвигает. Возвращает true, если запись
// действительно создана.
func (r *ReminderRepository) Create(
	ctx context.Context,
	accountID int64,
	avitoChatID string,
	firstTS time.Time,
	chatTitle string,
) (bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("reminders").
		Columns("account_id", "avito_chat_id", "first_ts", "chat_title", "created_at").
		Values(accountID, avitoChatID, firstTS, chatTitle, time.Now()).
		Suffix("ON CONFLICT (account_id, avito_chat_id) DO NOTHING")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "создание напоминания", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "создание напоминания", Cause: err}
	}

	return result.RowsAffected() > 0, nil
}

// FindDue возвращает напоминания, по которым пора отправить уведомление:
// покупатель ждёт дольше интервала, и с прошлого уведомления прошёл интервал.
func (r *ReminderRepository) FindDue(ctx context.Context, now time.Time, interval time.Duration) ([]*models.Reminder, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	threshold := now.Add(-interval)

	selectQuery := r.sq.Select(
		"id", "account_id", "avito_chat_id", "first_ts", "last_reminder", "COALESCE(chat_title, '')", "created_at").
		From("reminders").
		Where(sq.LtOrEq{"first_ts": threshold}).
		Where(sq.Or{
			sq.Eq{"last_reminder": nil},
			sq.LtOrEq{"last_reminder": threshold},
		}).
		OrderBy("first_ts")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск просроченных напоминаний", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск просроченных напоминаний", Cause: err}
	}
	defer rows.Close()

	return scanReminders(rows)
}

// MarkReminded фиксирует момент отправленного уведомления. Отметка только
// растёт: конкурирующий тик с более ранним временем запись не откатит.
func (r *ReminderRepository) MarkReminded(ctx context.Context, id int64, ts time.Time) (bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("reminders").
		Set("last_reminder", ts).
		Where(sq.Eq{"id": id}).
		Where(sq.Or{
			sq.Eq{"last_reminder": nil},
			sq.Lt{"last_reminder": ts},
		})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "отметка напоминания", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "отметка напоминания", Cause: err}
	}

	return result.RowsAffected() > 0, nil
}

// DeleteByConversation закрывает напоминание по диалогу, если оно открыто.
func (r *ReminderRepository) DeleteByConversation(ctx context.Context, accountID int64, avitoChatID string) (bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("reminders").
		Where(sq.Eq{"account_id": accountID, "avito_chat_id": avitoChatID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "закрытие напоминания", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "закрытие напоминания", Cause: err}
	}

	return result.RowsAffected() > 0, nil
}

// FindOpenByAccount возвращает открытые напоминания аккаунта,
// самые старые первыми.
func (r *ReminderRepository) FindOpenByAccount(ctx context.Context, accountID int64) ([]*models.Reminder, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"id", "account_id", "avito_chat_id", "first_ts", "last_reminder", "COALESCE(chat_title, '')", "created_at").
		From("reminders").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("first_ts")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск напоминаний аккаунта", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск напоминаний аккаунта", Cause: err}
	}
	defer rows.Close()

	return scanReminders(rows)
}

// ClearByAccount закрывает все напоминания аккаунта и возвращает их число.
func (r *ReminderRepository) ClearByAccount(ctx context.Context, accountID int64) (int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("reminders").Where(sq.Eq{"account_id": accountID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "очистка напоминаний", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "очистка напоминаний", Cause: err}
	}

	return result.RowsAffected(), nil
}

func (r *ReminderRepository) CountOpen(ctx context.Context) (int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("COUNT(*)").From("reminders")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчёт напоминаний", Cause: err}
	}

	var count int64

	if err := querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчёт напоминаний", Cause: err}
	}

	return count, nil
}

type reminderRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReminders(rows reminderRows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder

	for rows.Next() {
		reminder := &models.Reminder{}

		err := rows.Scan(
			&reminder.ID,
			&reminder.AccountID,
			&reminder.AvitoChatID,
			&reminder.FirstTS,
			&reminder.LastReminder,
			&reminder.ChatTitle,
			&reminder.CreatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "напоминания", Cause: err}
		}

		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение напоминаний", Cause: err}
	}

	return reminders, nil
}
