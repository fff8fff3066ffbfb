package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	resumesUploadedTotal     atomic.Uint64
	interviewsStartedTotal   atomic.Uint64
	interviewsCompletedTotal atomic.Uint64
	generationFailedTotal    atomic.Uint64
	evaluationFailedTotal    atomic.Uint64

	llmLatency = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncResumeUploaded increments the uploaded resume counter.
func IncResumeUploaded() {
	resumesUploadedTotal.Add(1)
}

// IncInterviewStarted increments the counter of sessions that received questions.
func IncInterviewStarted() {
	interviewsStartedTotal.Add(1)
}

// IncInterviewCompleted increments the counter of finalized sessions.
func IncInterviewCompleted() {
	interviewsCompletedTotal.Add(1)
}

// IncGenerationFailed increments the question generation failure counter.
func IncGenerationFailed() {
	generationFailedTotal.Add(1)
}

// IncEvaluationFailed increments the evaluation failure counter.
func IncEvaluationFailed() {
	evaluationFailedTotal.Add(1)
}

// ObserveLLMLatencyMs records one model call round trip in milliseconds.
func ObserveLLMLatencyMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmLatency.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resumes_uploaded_total", "Total resumes uploaded", resumesUploadedTotal.Load())
	writeCounter(&buf, "interviews_started_total", "Total sessions that received generated questions", interviewsStartedTotal.Load())
	writeCounter(&buf, "interviews_completed_total", "Total sessions finalized with a score", interviewsCompletedTotal.Load())
	writeCounter(&buf, "question_generation_failed_total", "Total failed question generation attempts", generationFailedTotal.Load())
	writeCounter(&buf, "evaluation_failed_total", "Total failed evaluation attempts", evaluationFailedTotal.Load())
	writeHistogram(&buf, "llm_latency_ms", "Model call latency in milliseconds", llmLatency.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
