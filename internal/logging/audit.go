package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of audit record.
type AuditEventType string

const (
	// Synthesis lifecycle
	AuditSynthStart    AuditEventType = "synth_start"
	AuditSynthReveal   AuditEventType = "synth_reveal"
	AuditSynthComplete AuditEventType = "synth_complete"
	AuditSynthFail     AuditEventType = "synth_fail"
	AuditSynthCancel   AuditEventType = "synth_cancel"

	// Generation service calls
	AuditLLMCall AuditEventType = "llm_call"

	// Export
	AuditFileWrite     AuditEventType = "file_write"
	AuditClipboardCopy AuditEventType = "clipboard_copy"
)

// AuditEvent is one JSON line in the audit log.
type AuditEvent struct {
	Timestamp  int64          `json:"ts"` // Unix milliseconds
	EventType  AuditEventType `json:"event"`
	Category   string         `json:"cat,omitempty"`
	RequestID  string         `json:"req,omitempty"`
	Generation uint64         `json:"gen,omitempty"`
	Target     string         `json:"target,omitempty"`
	Success    bool           `json:"success"`
	DurationMs int64          `json:"dur_ms,omitempty"`
	Size       int64          `json:"size,omitempty"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"msg,omitempty"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile *os.File
	auditMu   sync.Mutex
	auditPath string
)

// AuditLogger writes audit events. The zero value is ready to use.
type AuditLogger struct {
	category Category
}

var auditLogger = &AuditLogger{}

// InitAudit opens the day's audit file in the logs directory. It is a no-op
// when debug mode is off.
func InitAudit() error {
	if !IsDebugMode() || logsDir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	path := filepath.Join(logsDir, fmt.Sprintf("%s_audit.jsonl", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	auditPath = path
	return nil
}

// AuditPath returns the open audit file, or "" when auditing is off.
func AuditPath() string {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile == nil {
		return ""
	}
	return auditPath
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger.
func Audit() *AuditLogger {
	return auditLogger
}

// AuditFor returns an audit logger that tags events with category.
func AuditFor(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes event as one JSON line.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	auditFile.Write(append(data, '\n'))
}

// =============================================================================
// CONVENIENCE METHODS
// =============================================================================

// Synthesis records a controller lifecycle event.
func (a *AuditLogger) Synthesis(eventType AuditEventType, requestID string, generation uint64, errMsg string) {
	a.Log(AuditEvent{
		EventType:  eventType,
		Category:   string(CategorySynth),
		RequestID:  requestID,
		Generation: generation,
		Success:    errMsg == "",
		Error:      errMsg,
	})
}

// LLMCall records one generation service exchange.
func (a *AuditLogger) LLMCall(provider string, duration time.Duration, size int, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditLLMCall,
		Category:   string(CategoryGenerator),
		Target:     provider,
		Success:    errMsg == "",
		DurationMs: duration.Milliseconds(),
		Size:       int64(size),
		Error:      errMsg,
	})
}

// Export records a clipboard copy or file write.
func (a *AuditLogger) Export(eventType AuditEventType, target string, size int, errMsg string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Category:  string(CategoryExport),
		Target:    target,
		Success:   errMsg == "",
		Size:      int64(size),
		Error:     errMsg,
	})
}
