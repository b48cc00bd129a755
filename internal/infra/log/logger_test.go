package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"transit/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOutput(t *testing.T) {
	w, err := parseOutput("stderr")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	w, err = parseOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)

	_, err = parseOutput("file")
	assert.Error(t, err)
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(config.Log{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "stop", "Biryulyovo")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "Biryulyovo", entry["stop"])
}

func TestNewWithWriter_Pretty(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(config.Log{Pretty: true, Level: "debug"}, &buf)
	require.NoError(t, err)

	logger.Debug("router built", "edges", 12)
	assert.Contains(t, buf.String(), "msg=\"router built\"")
	assert.Contains(t, buf.String(), "edges=12")
}

func TestNew(t *testing.T) {
	cfg := config.Default()

	logger, err := New(Params{Config: cfg})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Env.Log.Output = "socket"
	_, err = New(Params{Config: cfg})
	assert.Error(t, err)
}
