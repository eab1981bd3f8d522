package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAudit(t *testing.T, path string) []AuditEvent {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []AuditEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev AuditEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev), sc.Text())
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestAudit_WritesJSONLines(t *testing.T) {
	require.NoError(t, Initialize(t.TempDir(), Config{DebugMode: true}))
	t.Cleanup(CloseAll)

	path := AuditPath()
	require.NotEmpty(t, path)

	Audit().Synthesis(AuditSynthStart, "req-1", 3, "")
	Audit().LLMCall("gemini", 1500*time.Millisecond, 42, "")
	Audit().Synthesis(AuditSynthFail, "req-1", 3, "upstream failed")
	AuditFor(CategoryExport).Log(AuditEvent{EventType: AuditFileWrite, Target: "/tmp/script.sh", Success: true})
	CloseAll()

	events := readAudit(t, path)
	require.Len(t, events, 4)

	assert.Equal(t, AuditSynthStart, events[0].EventType)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, uint64(3), events[0].Generation)
	assert.True(t, events[0].Success)

	assert.Equal(t, AuditLLMCall, events[1].EventType)
	assert.Equal(t, int64(1500), events[1].DurationMs)
	assert.Equal(t, int64(42), events[1].Size)

	assert.False(t, events[2].Success)
	assert.Equal(t, "upstream failed", events[2].Error)

	assert.Equal(t, string(CategoryExport), events[3].Category)
	assert.NotZero(t, events[3].Timestamp)
}

func TestAudit_DisabledWithoutDebugMode(t *testing.T) {
	require.NoError(t, Initialize(t.TempDir(), Config{DebugMode: false}))
	t.Cleanup(CloseAll)

	assert.Empty(t, AuditPath())
	Audit().Synthesis(AuditSynthStart, "req", 1, "")
}
