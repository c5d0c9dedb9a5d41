package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Info("should be dropped")
	assert.Empty(t, buf.String())

	Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestJSONFormatIsValid(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	defer SetFormat("text")

	Info("hello", "peer", uint64(5))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
	assert.Equal(t, float64(5), decoded["peer"])
}

func TestCtxInjectsLogContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()
	SetLevel("DEBUG")

	lc := NewLogContext(42).WithRoute(7, 3, 99)
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "dispatched")
	line := buf.String()
	assert.True(t, strings.Contains(line, "peer=42"))
	assert.True(t, strings.Contains(line, "service_id=7"))
	assert.True(t, strings.Contains(line, "method_id=3"))
	assert.True(t, strings.Contains(line, "message_id=99"))
}

func TestFromContextNilWhenAbsent(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
