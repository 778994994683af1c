package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records process and workspace gauges
type SystemMetrics struct {
	goRoutines    metric.Int64Gauge
	memoryUsage   metric.Int64Gauge
	processUptime metric.Float64Gauge
	workspaces    metric.Int64Gauge
}

// NewSystemMetrics creates the gauges on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	memoryUsage, err := meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	workspaces, err := meter.Int64Gauge(
		"workspaces_active",
		metric.WithDescription("Number of open report workspaces"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:    goRoutines,
		memoryUsage:   memoryUsage,
		processUptime: processUptime,
		workspaces:    workspaces,
	}, nil
}

// SystemStats holds current system statistics
type SystemStats struct {
	GoRoutines    int64
	MemoryUsage   int64
	ProcessUptime time.Duration
	Workspaces    int64
	Timestamp     time.Time
}

// Collect reads the current statistics and records them
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time, workspaces int) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		MemoryUsage:   int64(memStats.Alloc),
		ProcessUptime: time.Since(startTime),
		Workspaces:    int64(workspaces),
		Timestamp:     time.Now(),
	}

	sm.goRoutines.Record(ctx, stats.GoRoutines)
	sm.memoryUsage.Record(ctx, stats.MemoryUsage)
	sm.processUptime.Record(ctx, stats.ProcessUptime.Seconds())
	sm.workspaces.Record(ctx, stats.Workspaces)

	return stats
}

// SystemMetricsCollector records SystemMetrics on a fixed interval
type SystemMetricsCollector struct {
	metrics    *SystemMetrics
	workspaces func() int
	startTime  time.Time
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewSystemMetricsCollector creates a collector. workspaces reports the
// number of open workspaces and may be nil.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration, workspaces func() int) (*SystemMetricsCollector, error) {
	metrics, err := NewSystemMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if workspaces == nil {
		workspaces = func() int { return 0 }
	}

	return &SystemMetricsCollector{
		metrics:    metrics,
		workspaces: workspaces,
		startTime:  time.Now(),
		interval:   interval,
		stopCh:     make(chan struct{}),
	}, nil
}

// Start collects until Stop is called or ctx is done
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.GetCurrentStats(ctx)

	for {
		select {
		case <-ticker.C:
			smc.GetCurrentStats(ctx)
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collection. It is safe to call more than once.
func (smc *SystemMetricsCollector) Stop() {
	smc.stopOnce.Do(func() { close(smc.stopCh) })
}

// GetCurrentStats collects and returns the current statistics
func (smc *SystemMetricsCollector) GetCurrentStats(ctx context.Context) *SystemStats {
	return smc.metrics.Collect(ctx, smc.startTime, smc.workspaces())
}
