package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"avito-notify/internal/domain/models"
)

func TestAccountLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Основной", (&models.Account{AvitoUserID: 1, Name: "Магазин", DisplayName: "Основной"}).Label())
	assert.Equal(t, "Магазин", (&models.Account{AvitoUserID: 1, Name: "Магазин"}).Label())
	assert.Equal(t, "123456", (&models.Account{AvitoUserID: 123456}).Label())
}
