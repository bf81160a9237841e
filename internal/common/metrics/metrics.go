package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "avito_notify"

	WebhookSubsystem   = "webhook"
	RemindersSubsystem = "reminders"
	BotSubsystem       = "bot"
)

// Общие метрики.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Метрики вебхука.
var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WebhookSubsystem,
			Name:      "events_total",
			Help:      "Total number of webhook chat events by message direction",
		},
		[]string{"direction"},
	)
)

// Метрики напоминаний.
var (
	OpenRemindersCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: RemindersSubsystem,
			Name:      "open_count",
			Help:      "Number of open reminders awaiting a seller reply",
		},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RemindersSubsystem,
			Name:      "notifications_sent_total",
			Help:      "Total number of Telegram notifications by kind and status",
		},
		[]string{"kind", "status"},
	)

	TickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: RemindersSubsystem,
			Name:      "tick_duration_seconds",
			Help:      "Scheduler tick duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"job"},
	)
)

// Метрики бота.
var (
	BotCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "commands_total",
			Help:      "Total number of admin bot commands processed",
		},
		[]string{"command", "status"},
	)
)

func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordWebhookEvent(direction string) {
	WebhookEventsTotal.WithLabelValues(direction).Inc()
}

func RecordNotification(kind, status string) {
	NotificationsSentTotal.WithLabelValues(kind, status).Inc()
}

func RecordTick(job string, duration time.Duration) {
	TickDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func SetOpenReminders(count float64) {
	OpenRemindersCount.Set(count)
}

func RecordBotCommand(command, status string) {
	BotCommandsTotal.WithLabelValues(command, status).Inc()
}
