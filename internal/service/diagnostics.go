package service

import (
	"sync"
	"time"

	"github.com/itsJino/slainte-llm/internal/model"
)

const snapshotPreviewLen = 300

// Snapshot captures one retrieval for the diagnostic surface.
type Snapshot struct {
	Result    model.RetrievalResult
	Raw       *model.QueryResult
	Context   string
	Timestamp time.Time
}

// DiagnosticsRecorder holds the most recent retrieval snapshot. It is written
// after each search and read only by the diagnostic endpoints; the request
// pipeline never consults it.
type DiagnosticsRecorder struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewDiagnosticsRecorder() *DiagnosticsRecorder {
	return &DiagnosticsRecorder{}
}

func (r *DiagnosticsRecorder) Record(result model.RetrievalResult, raw *model.QueryResult, context string) {
	if r == nil {
		return
	}
	snap := &Snapshot{
		Result:    result,
		Raw:       raw,
		Context:   context,
		Timestamp: time.Now(),
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}

// Last returns the most recent snapshot, or nil if nothing was recorded yet.
func (r *DiagnosticsRecorder) Last() *Snapshot {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// ContextInfo shapes the snapshot for the last-context endpoint.
func (r *DiagnosticsRecorder) ContextInfo() map[string]interface{} {
	snap := r.Last()
	if snap == nil {
		return map[string]interface{}{
			"context":       "",
			"timestamp":     "",
			"contextLength": 0,
			"preview":       "",
		}
	}
	preview := snap.Context
	if len(preview) > snapshotPreviewLen {
		preview = preview[:snapshotPreviewLen] + "..."
	}
	info := map[string]interface{}{
		"context":       snap.Context,
		"timestamp":     snap.Timestamp.Format(time.RFC3339),
		"contextLength": len(snap.Context),
		"preview":       preview,
	}
	if count := snap.Raw.DocumentCount(); count > 0 {
		info["documentCount"] = count
	}
	return info
}
