// Package workhours решает, разрешена ли доставка уведомления
// в данный момент по локальному окну рабочих часов привязки.
package workhours

import (
	"time"

	"avito-notify/internal/domain/models"
)

// InWindow сообщает, попадает ли момент moment (UTC или любая зона)
// в окно [from, to) локального времени локации loc.
//
// Отсутствие границы или from == to означает круглосуточное окно.
// Окно from > to переваливает через полночь. Сравнение ведётся
// с точностью до минуты, секунды отбрасываются.
func InWindow(moment time.Time, loc *time.Location, from, to *models.DayTime) bool {
	if from == nil || to == nil {
		return true
	}

	if *from == *to {
		return true
	}

	local := models.DayTimeOf(moment.In(loc)).MinuteOfDay()
	start := from.MinuteOfDay()
	end := to.MinuteOfDay()

	if start < end {
		return start <= local && local < end
	}

	// Окно через полночь: 22:00-06:00.
	return local >= start || local < end
}
