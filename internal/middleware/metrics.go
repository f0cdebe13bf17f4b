package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSockets is the number of open websocket connections across hubs.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "writescape_active_websockets",
		Help: "Number of currently open websocket connections",
	})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writescape_redis_errors_total",
		Help: "Redis command failures by command",
	}, []string{"command"})

	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process wide HTTP metrics middleware. The
// collectors register with the default registry once, so repeated calls
// (one per server instance in tests) share the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}
