package repository

import (
	"avito-notify/internal/domain/models"
)

// parseDayTimeColumn читает TEXT-колонку формата HH:MM.
func parseDayTimeColumn(s *string) (*models.DayTime, error) {
	if s == nil {
		return nil, nil
	}

	dt, err := models.ParseDayTime(*s)
	if err != nil {
		return nil, err
	}

	return &dt, nil
}
