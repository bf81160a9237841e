package models

import (
	"strconv"
	"time"
)

// Account — подключённый аккаунт продавца Avito.
type Account struct {
	ID          int64
	AvitoUserID int64
	Name        string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label возвращает человекочитаемое имя аккаунта:
// display_name, затем name, затем avito_user_id.
func (a *Account) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}

	if a.Name != "" {
		return a.Name
	}

	return strconv.FormatInt(a.AvitoUserID, 10)
}
