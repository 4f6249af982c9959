package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters. HTTP-level metrics come from fiberprometheus; these track
// the vendor integration, which the request metrics cannot see into.
var (
	VendorAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anex_vendor_api_errors_total",
		Help: "Errors returned by the banking vendor API, by endpoint.",
	}, []string{"endpoint"})

	SyncTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anex_sync_transactions_total",
		Help: "Transactions applied by the sync routine, by kind (added, modified, removed).",
	}, []string{"kind"})

	SyncPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anex_sync_pages_total",
		Help: "Pages fetched from the vendor transaction stream.",
	})
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP request metrics.
// The instance is shared; the underlying collectors register globally and can
// only be created once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
