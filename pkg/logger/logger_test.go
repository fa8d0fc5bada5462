package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallback(t *testing.T) {
	entry := GetLogger(context.Background())
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	base := logrus.New()
	entry := logrus.NewEntry(base).WithField("component", "registry")

	ctx := WithLogger(context.Background(), entry)
	got := GetLogger(ctx)

	assert.Equal(t, base, got.Logger)
	assert.Equal(t, "registry", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, SetLogLevel("debug"))
		assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
		require.NoError(t, SetLogLevel("info"))
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, SetLogLevel("chatty"))
	})
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	setFormat(l, "json")

	l.WithField("skills", 3).Info("index built")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "index built", record["message"])
	assert.Equal(t, "info", record["level"])
	assert.EqualValues(t, 3, record["skills"])
	assert.NotEmpty(t, record["timestamp"])
}
