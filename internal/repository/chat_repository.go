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

type ChatRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewChatRepository(db *database.PostgresDB) *ChatRepository {
	return &ChatRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertByTgChatID регистрирует Telegram-чат или обновляет его название.
func (r *ChatRepository) UpsertByTgChatID(ctx context.Context, tgChatID int64, title string) (*models.Chat, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	insertQuery := r.sq.Insert("chats").
		Columns("tg_chat_id", "title", "created_at", "updated_at").
		Values(tgChatID, title, now, now).
		Suffix(`ON CONFLICT (tg_chat_id) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), chats.title),
			updated_at = EXCLUDED.updated_at
		RETURNING id, tg_chat_id, title, created_at, updated_at`)

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "регистрация чата", Cause: err}
	}

	chat := &models.Chat{}

	err = querier.QueryRow(ctx, query, args...).Scan(
		&chat.ID,
		&chat.TgChatID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "регистрация чата", Cause: err}
	}

	return chat, nil
}

func (r *ChatRepository) FindByTgChatID(ctx context.Context, tgChatID int64) (*models.Chat, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("id", "tg_chat_id", "title", "created_at", "updated_at").
		From("chats").
		Where(sq.Eq{"tg_chat_id": tgChatID})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск чата", Cause: err}
	}

	chat := &models.Chat{}

	err = querier.QueryRow(ctx, query, args...).Scan(
		&chat.ID,
		&chat.TgChatID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrChatNotFound{TgChatID: tgChatID}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск чата", Cause: err}
	}

	return chat, nil
}

// DeleteByTgChatID снимает чат с учёта вместе с его привязками (ON DELETE CASCADE).
func (r *ChatRepository) DeleteByTgChatID(ctx context.Context, tgChatID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("chats").Where(sq.Eq{"tg_chat_id": tgChatID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление чата", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление чата", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrChatNotFound{TgChatID: tgChatID}
	}

	return nil
}
