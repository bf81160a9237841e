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

// LinkRepository хранит привязки аккаунтов Avito к Telegram-чатам
// вместе с политикой доставки: mute, рабочие часы, таймзона, дайджест.
type LinkRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewLinkRepository(db *database.PostgresDB) *LinkRepository {
	return &LinkRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const linkColumns = `l.id, l.account_id, l.chat_id, l.muted,
	l.work_from, l.work_to, l.tz, l.daily_digest_time,
	l.created_at, l.updated_at, c.tg_chat_id, c.title`

// Ensure создаёт привязку, повторный вызов для той же пары безвреден.
func (r *LinkRepository) Ensure(ctx context.Context, accountID, chatID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	insertQuery := r.sq.Insert("account_chat_links").
		Columns("account_id", "chat_id", "created_at", "updated_at").
		Values(accountID, chatID, now, now).
		Suffix("ON CONFLICT (account_id, chat_id) DO NOTHING")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание привязки", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание привязки", Cause: err}
	}

	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, accountID, chatID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("account_chat_links").
		Where(sq.Eq{"account_id": accountID, "chat_id": chatID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление привязки", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление привязки", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrLinkNotFound{AccountID: accountID, ChatID: chatID}
	}

	return nil
}

// FindByAccountID возвращает все назначения доставки аккаунта
// вместе с данными чата.
func (r *LinkRepository) FindByAccountID(ctx context.Context, accountID int64) ([]*models.Link, error) {
	return r.findLinks(ctx, sq.Eq{"l.account_id": accountID}, "поиск привязок аккаунта")
}

// FindByChatID возвращает все привязки Telegram-чата.
func (r *LinkRepository) FindByChatID(ctx context.Context, chatID int64) ([]*models.Link, error) {
	return r.findLinks(ctx, sq.Eq{"l.chat_id": chatID}, "поиск привязок чата")
}

// FindWithDigest возвращает привязки с назначенным временем дайджеста.
func (r *LinkRepository) FindWithDigest(ctx context.Context) ([]*models.Link, error) {
	return r.findLinks(ctx, sq.NotEq{"l.daily_digest_time": nil}, "поиск привязок с дайджестом")
}

func (r *LinkRepository) findLinks(ctx context.Context, where interface{}, operation string) ([]*models.Link, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(linkColumns).
		From("account_chat_links l").
		Join("chats c ON c.id = l.chat_id").
		Where(where).
		OrderBy("l.id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	var links []*models.Link

	for rows.Next() {
		link := &models.Link{}

		var workFrom, workTo, digestTime *string

		err := rows.Scan(
			&link.ID,
			&link.AccountID,
			&link.ChatID,
			&link.Muted,
			&workFrom,
			&workTo,
			&link.TZ,
			&digestTime,
			&link.CreatedAt,
			&link.UpdatedAt,
			&link.TgChatID,
			&link.ChatTitle,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "привязки", Cause: err}
		}

		if link.WorkFrom, err = parseDayTimeColumn(workFrom); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "привязки", Cause: err}
		}

		if link.WorkTo, err = parseDayTimeColumn(workTo); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "привязки", Cause: err}
		}

		if link.DigestTime, err = parseDayTimeColumn(digestTime); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "привязки", Cause: err}
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return links, nil
}

// UpdateSettingsForChat применяет явно перечисленные настройки ко всем
// привязкам чата и возвращает число затронутых привязок.
func (r *LinkRepository) UpdateSettingsForChat(ctx context.Context, chatID int64, settings models.LinkSettings) (int64, error) {
	if settings.Empty() {
		return 0, nil
	}

	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("account_chat_links").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"chat_id": chatID})

	if settings.Muted != nil {
		updateQuery = updateQuery.Set("muted", *settings.Muted)
	}

	if settings.WorkFrom != nil {
		updateQuery = updateQuery.Set("work_from", settings.WorkFrom.String())
	}

	if settings.WorkTo != nil {
		updateQuery = updateQuery.Set("work_to", settings.WorkTo.String())
	}

	if settings.TZ != nil {
		updateQuery = updateQuery.Set("tz", *settings.TZ)
	}

	switch {
	case settings.ClearDigest:
		updateQuery = updateQuery.Set("daily_digest_time", nil)
	case settings.DigestTime != nil:
		updateQuery = updateQuery.Set("daily_digest_time", settings.DigestTime.String())
	}

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "обновление настроек привязок", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "обновление настроек привязок", Cause: err}
	}

	return result.RowsAffected(), nil
}
