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

// SentMessageRepository ведёт журнал отправленных ботом сообщений.
// Удаление двухфазное: сначала мягкая отметка deleted_ts после удаления
// из Telegram, затем жёсткая чистка строк старше ретенции.
type SentMessageRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewSentMessageRepository(db *database.PostgresDB) *SentMessageRepository {
	return &SentMessageRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SentMessageRepository) Log(ctx context.Context, tgChatID, tgMessageID int64, sentAt time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("sent_messages").
		Columns("tg_chat_id", "tg_message_id", "sent_at").
		Values(tgChatID, tgMessageID, sentAt)

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "журналирование сообщения", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "журналирование сообщения", Cause: err}
	}

	return nil
}

// FindActiveOlderThan возвращает ещё не удалённые сообщения, отправленные
// до указанного момента.
func (r *SentMessageRepository) FindActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*models.SentMessage, error) {
	return r.findActive(ctx, r.sq.Select("id", "tg_chat_id", "tg_message_id", "sent_at", "deleted_ts").
		From("sent_messages").
		Where(sq.Eq{"deleted_ts": nil}).
		Where(sq.Lt{"sent_at": cutoff}).
		OrderBy("sent_at"))
}

// FindActiveByChat возвращает все неудалённые сообщения конкретного чата.
func (r *SentMessageRepository) FindActiveByChat(ctx context.Context, tgChatID int64) ([]*models.SentMessage, error) {
	return r.findActive(ctx, r.sq.Select("id", "tg_chat_id", "tg_message_id", "sent_at", "deleted_ts").
		From("sent_messages").
		Where(sq.Eq{"deleted_ts": nil, "tg_chat_id": tgChatID}).
		OrderBy("sent_at"))
}

func (r *SentMessageRepository) findActive(ctx context.Context, selectQuery sq.SelectBuilder) ([]*models.SentMessage, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск сообщений", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск сообщений", Cause: err}
	}
	defer rows.Close()

	var messages []*models.SentMessage

	for rows.Next() {
		msg := &models.SentMessage{}

		err := rows.Scan(&msg.ID, &msg.TgChatID, &msg.TgMessageID, &msg.SentAt, &msg.DeletedTS)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "сообщения", Cause: err}
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск сообщений", Cause: err}
	}

	return messages, nil
}

func (r *SentMessageRepository) SoftDelete(ctx context.Context, id int64, ts time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("sent_messages").
		Set("deleted_ts", ts).
		Where(sq.Eq{"id": id, "deleted_ts": nil})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "мягкое удаление сообщения", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "мягкое удаление сообщения", Cause: err}
	}

	return nil
}

// PurgeOlderThan окончательно удаляет мягко удалённые строки старше ретенции.
func (r *SentMessageRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("sent_messages").
		Where(sq.NotEq{"deleted_ts": nil}).
		Where(sq.Lt{"deleted_ts": cutoff})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "чистка журнала сообщений", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "чистка журнала сообщений", Cause: err}
	}

	return result.RowsAffected(), nil
}
