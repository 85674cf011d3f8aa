package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adminRequestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worklane",
		Name:      "admin_requests_created_total",
		Help:      "Admin access requests created, labelled by routing target.",
	}, []string{"routed_to"})

	adminRequestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worklane",
		Name:      "admin_requests_resolved_total",
		Help:      "Admin access requests resolved, labelled by outcome.",
	}, []string{"outcome"})

	adminRequestsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "worklane",
		Name:      "admin_requests_expired_total",
		Help:      "Admin access requests that crossed their expiry time.",
	})

	adminCountRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "worklane",
		Name:      "admin_count_repaired_total",
		Help:      "Times the stored organization admin counter disagreed with the live count and was rewritten.",
	})
)
