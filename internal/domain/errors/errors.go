package errors

import (
	"fmt"
)

type ErrAccountNotFound struct {
	AvitoUserID int64
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("аккаунт с avito_user_id %d не найден", e.AvitoUserID)
}

func (e *ErrAccountNotFound) Is(target error) bool {
	_, ok := target.(*ErrAccountNotFound)
	return ok
}

type ErrChatNotFound struct {
	TgChatID int64
}

func (e *ErrChatNotFound) Error() string {
	return fmt.Sprintf("чат не найден: %d", e.TgChatID)
}

func (e *ErrChatNotFound) Is(target error) bool {
	_, ok := target.(*ErrChatNotFound)
	return ok
}

type ErrLinkNotFound struct {
	AccountID int64
	ChatID    int64
}

func (e *ErrLinkNotFound) Error() string {
	return fmt.Sprintf("привязка аккаунта %d к чату %d не найдена", e.AccountID, e.ChatID)
}

func (e *ErrLinkNotFound) Is(target error) bool {
	_, ok := target.(*ErrLinkNotFound)
	return ok
}

type ErrInvalidTimezone struct {
	Name string
}

func (e *ErrInvalidTimezone) Error() string {
	return "неизвестная таймзона: " + e.Name
}

func (e *ErrInvalidTimezone) Is(target error) bool {
	_, ok := target.(*ErrInvalidTimezone)
	return ok
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

func (e *ErrInvalidArgument) Is(target error) bool {
	_, ok := target.(*ErrInvalidArgument)
	return ok
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "неизвестная команда: " + e.Command
}

type ErrNotConfigured struct {
	What string
}

func (e *ErrNotConfigured) Error() string {
	return "не настроено: " + e.What
}

type ErrBadSignature struct{}

func (e *ErrBadSignature) Error() string {
	return "некорректная подпись webhook"
}

func (e *ErrBadSignature) Is(target error) bool {
	_, ok := target.(*ErrBadSignature)
	return ok
}

type ErrNoTokens struct{}

func (e *ErrNoTokens) Error() string {
	return "нет сохранённых токенов Avito, пройдите авторизацию через /oauth/callback"
}

func (e *ErrNoTokens) Is(target error) bool {
	_, ok := target.(*ErrNoTokens)
	return ok
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
