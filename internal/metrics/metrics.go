package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WalletOperations считает выполненные операции кошелька по типам.
var WalletOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marketbay",
	Subsystem: "wallet",
	Name:      "operations_total",
	Help:      "Количество выполненных операций кошелька",
}, []string{"operation"})

// DisputesOpened считает открытые споры по причинам.
var DisputesOpened = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marketbay",
	Subsystem: "disputes",
	Name:      "opened_total",
	Help:      "Количество открытых споров",
}, []string{"reason"})

// DisputesResolved считает решённые споры по исходам.
var DisputesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marketbay",
	Subsystem: "disputes",
	Name:      "resolved_total",
	Help:      "Количество решённых споров",
}, []string{"resolution"})

// RedFlagsRaised считает заведённые красные флаги по типам и серьёзности.
var RedFlagsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marketbay",
	Subsystem: "red_flags",
	Name:      "raised_total",
	Help:      "Количество заведённых красных флагов",
}, []string{"type", "severity"})
