package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var hoursRangeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})(?:\s+([\w/\-+]+))?$`)

// DayTime — локальное время суток с точностью до минуты.
type DayTime struct {
	Hour   int
	Minute int
}

func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t DayTime) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// DayTimeOf обрезает момент времени до минуты суток в его локации.
func DayTimeOf(moment time.Time) DayTime {
	return DayTime{Hour: moment.Hour(), Minute: moment.Minute()}
}

func ParseDayTime(s string) (DayTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return DayTime{}, fmt.Errorf("некорректный формат времени %q, ожидается HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return DayTime{}, fmt.Errorf("некорректный час в %q: %w", s, err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return DayTime{}, fmt.Errorf("некорректная минута в %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return DayTime{}, fmt.Errorf("время %q вне диапазона 00:00-23:59", s)
	}

	return DayTime{Hour: hour, Minute: minute}, nil
}

// ParseHoursRange разбирает строку вида "HH:MM-HH:MM [Europe/Moscow]".
// Таймзона необязательна, пустая строка означает "оставить как есть".
func ParseHoursRange(s string) (from, to DayTime, tz string, err error) {
	m := hoursRangeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DayTime{}, DayTime{}, "", fmt.Errorf("ожидается формат HH:MM-HH:MM [Europe/Moscow], получено %q", s)
	}

	from, err = ParseDayTime(m[1] + ":" + m[2])
	if err != nil {
		return DayTime{}, DayTime{}, "", err
	}

	to, err = ParseDayTime(m[3] + ":" + m[4])
	if err != nil {
		return DayTime{}, DayTime{}, "", err
	}

	return from, to, m[5], nil
}
