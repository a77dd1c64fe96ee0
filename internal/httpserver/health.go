package httpserver

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the reported state of the service or one of its checks.
type HealthStatus string

const (
	// HealthStatusHealthy indicates the service is fully operational.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded indicates reduced but functional service.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy indicates the service cannot serve requests.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one named health check outcome.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker performs one health check.
type HealthChecker func() CheckResult

// HealthOptions configures the health endpoints.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	StartTime      time.Time
	Checks         map[string]HealthChecker
}

// RegisterHealthRoutes adds GET and HEAD /health.
func RegisterHealthRoutes(router *gin.Engine, opts HealthOptions) {
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	router.GET("/health", healthHandler(opts))
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health/memory", memoryHandler())
}

const bytesPerMiB = 1024 * 1024

// memoryHandler reports runtime memory statistics.
func memoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		c.JSON(http.StatusOK, gin.H{
			"alloc_mb":       stats.Alloc / bytesPerMiB,
			"total_alloc_mb": stats.TotalAlloc / bytesPerMiB,
			"sys_mb":         stats.Sys / bytesPerMiB,
			"heap_objects":   stats.HeapObjects,
			"num_gc":         stats.NumGC,
			"goroutines":     runtime.NumGoroutine(),
		})
	}
}

func healthHandler(opts HealthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(opts.StartTime).Truncate(time.Second).String(),
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				result := check()
				response.Checks[name] = result

				switch {
				case result.Status == HealthStatusUnhealthy:
					response.Status = HealthStatusUnhealthy
				case result.Status == HealthStatusDegraded && response.Status == HealthStatusHealthy:
					response.Status = HealthStatusDegraded
				}
			}
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

// DatabaseHealthChecker wraps a ping function as a named check.
func DatabaseHealthChecker(ping func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		pingErr := ping()
		latency := time.Since(start)

		if pingErr != nil {
			return CheckResult{
				Status:  HealthStatusUnhealthy,
				Message: "database connection failed",
				Latency: latency.String(),
			}
		}

		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: "database connection OK",
			Latency: latency.String(),
		}
	}
}
