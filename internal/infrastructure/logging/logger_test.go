package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/config"
)

func TestSlogLogger_JSONCarriesMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriterLogger(&buf, "json", "info", false)
	require.NoError(t, err)

	logger.Log(common.LevelWarn, "Action applied", map[string]interface{}{
		"ship_id": "s1",
		"reason":  "insufficient fuel",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Action applied", entry["msg"])
	assert.Equal(t, "s1", entry["ship_id"])
	assert.Equal(t, "insufficient fuel", entry["reason"])
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriterLogger(&buf, "text", "warn", false)
	require.NoError(t, err)

	logger.Log(common.LevelInfo, "quiet", nil)
	logger.Log(common.LevelDebug, "quieter", nil)
	logger.Log(common.LevelError, "loud", nil)

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "msg=loud")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewWriterLogger_RejectsUnknownSettings(t *testing.T) {
	_, err := NewWriterLogger(&bytes.Buffer{}, "xml", "info", false)
	assert.Error(t, err)

	_, err = NewWriterLogger(&bytes.Buffer{}, "text", "chatty", false)
	assert.Error(t, err)
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portsim.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)

	logger.Log(common.LevelDebug, "Run finished", map[string]interface{}{"run_id": "r1"})
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id=r1")
}
