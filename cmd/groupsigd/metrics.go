// metrics.go - in-process metrics collection for the groupsig daemon.
package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MetricType represents the type of metric.
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// Metric represents a single metric.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector manages metrics collection.
type MetricsCollector struct {
	mu         sync.RWMutex
	metrics    map[string]*Metric
	counters   map[string]*int64
	histograms map[string][]float64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:    make(map[string]*Metric),
		counters:   make(map[string]*int64),
		histograms: make(map[string][]float64),
	}
}

// IncrementCounter increments a counter metric.
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := mc.makeKey(name, labels)
	if counter, exists := mc.counters[key]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var value int64 = 1
		mc.counters[key] = &value
	}
	mc.updateMetric(name, Counter, float64(*mc.counters[key]), labels)
}

// RecordHistogram records a value in a histogram.
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := mc.makeKey(name, labels)
	mc.histograms[key] = append(mc.histograms[key], value)
	if len(mc.histograms[key]) > 1000 {
		mc.histograms[key] = mc.histograms[key][len(mc.histograms[key])-1000:]
	}
	mc.updateMetric(name, Histogram, value, labels)
}

// GetMetricsSummary returns a summary of all metrics.
func (mc *MetricsCollector) GetMetricsSummary() map[string]any {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summary := make(map[string]any)

	counters := make(map[string]int64)
	for key, counter := range mc.counters {
		counters[key] = atomic.LoadInt64(counter)
	}
	summary["counters"] = counters

	histograms := make(map[string]map[string]float64)
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := map[string]float64{"count": float64(len(values)), "min": values[0], "max": values[0]}
		var sum float64
		for _, v := range values {
			if v < h["min"] {
				h["min"] = v
			}
			if v > h["max"] {
				h["max"] = v
			}
			sum += v
		}
		h["sum"] = sum
		h["avg"] = sum / h["count"]
		histograms[key] = h
	}
	summary["histograms"] = histograms

	return summary
}

func (mc *MetricsCollector) makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	key := name
	for k, v := range labels {
		key += fmt.Sprintf("_%s_%s", k, v)
	}
	return key
}

func (mc *MetricsCollector) updateMetric(name string, metricType MetricType, value float64, labels map[string]string) {
	key := mc.makeKey(name, labels)
	mc.metrics[key] = &Metric{Name: name, Type: metricType, Value: value, Labels: labels, Timestamp: time.Now()}
}

// Predefined metric names.
const (
	MetricSetupCount          = "setup_count"
	MetricJoinCount           = "join_count"
	MetricJoinFailureCount    = "join_failure_count"
	MetricSignCount           = "sign_count"
	MetricVerifyCount         = "verify_count"
	MetricVerifyFailureCount  = "verify_failure_count"
	MetricSignDuration        = "sign_duration_seconds"
	MetricVerifyDuration      = "verify_duration_seconds"
	MetricPairingCheckSeconds = "pairing_check_duration_seconds"
)

func (mc *MetricsCollector) RecordSign(d time.Duration) {
	mc.IncrementCounter(MetricSignCount, nil)
	mc.RecordHistogram(MetricSignDuration, d.Seconds(), nil)
}

func (mc *MetricsCollector) RecordVerify(d time.Duration, ok bool) {
	mc.IncrementCounter(MetricVerifyCount, nil)
	if !ok {
		mc.IncrementCounter(MetricVerifyFailureCount, nil)
	}
	mc.RecordHistogram(MetricVerifyDuration, d.Seconds(), nil)
}

func (mc *MetricsCollector) RecordJoinFailure() {
	mc.IncrementCounter(MetricJoinFailureCount, nil)
}
