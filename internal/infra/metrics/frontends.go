package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(telegramCommandsReceivedTotal, telegramRejectedTotal) }

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rejected_total",
			Help: "Messages dropped because the chat is not on the allowlist.",
		},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramRejected() {
	telegramRejectedTotal.Inc()
}
