package services

import (
	"sync"
	"time"
)

// MetricsService keeps in-process counters for the directory and the
// avatar pipeline. The Prometheus collector in infrastructure mirrors a
// subset of these for scraping; this service backs the /stats endpoint
// and tests.
type MetricsService struct {
	mu sync.RWMutex

	appendsTotal      int
	duplicatesTotal   int
	channelsCurrent   int
	selectionsTotal   int
	decodeFailures    int
	uploadFailures    int
	commitsTotal      int
	dualWriteFailures int
	lastCommitLatency time.Duration
}

func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

func (m *MetricsService) RecordAppend(duplicate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendsTotal++
	if duplicate {
		m.duplicatesTotal++
	}
}

func (m *MetricsService) SetChannelCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelsCurrent = n
}

func (m *MetricsService) RecordSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectionsTotal++
}

func (m *MetricsService) RecordDecodeFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeFailures++
}

func (m *MetricsService) RecordUploadFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadFailures++
}

func (m *MetricsService) RecordCommit(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitsTotal++
	m.lastCommitLatency = latency
}

func (m *MetricsService) RecordDualWriteFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dualWriteFailures++
}

// Snapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	AppendsTotal      int           `json:"appends_total"`
	DuplicatesTotal   int           `json:"duplicates_total"`
	ChannelsCurrent   int           `json:"channels_current"`
	SelectionsTotal   int           `json:"selections_total"`
	DecodeFailures    int           `json:"decode_failures"`
	UploadFailures    int           `json:"upload_failures"`
	CommitsTotal      int           `json:"commits_total"`
	DualWriteFailures int           `json:"dual_write_failures"`
	LastCommitLatency time.Duration `json:"last_commit_latency_ns"`
}

func (m *MetricsService) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		AppendsTotal:      m.appendsTotal,
		DuplicatesTotal:   m.duplicatesTotal,
		ChannelsCurrent:   m.channelsCurrent,
		SelectionsTotal:   m.selectionsTotal,
		DecodeFailures:    m.decodeFailures,
		UploadFailures:    m.uploadFailures,
		CommitsTotal:      m.commitsTotal,
		DualWriteFailures: m.dualWriteFailures,
		LastCommitLatency: m.lastCommitLatency,
	}
}
