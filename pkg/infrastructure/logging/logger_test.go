package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/config"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithField("product_id", "WIDGET").Debug("rollup built")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rollup built", entry["msg"])
	assert.Equal(t, "WIDGET", entry["product_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithOutput_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := NewWithOutput(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, isText := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}
