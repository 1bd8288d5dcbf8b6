package logger

import (
	"path/filepath"
	"testing"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	t.Cleanup(func() { Setup(Options{}) })

	l := Setup(Options{Level: "debug"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = Setup(Options{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestSetupRotatingFile(t *testing.T) {
	t.Cleanup(func() { Setup(Options{}) })

	path := filepath.Join(t.TempDir(), "greentrack.log")
	l := Setup(Options{File: path})
	rot, ok := l.Out.(*lumberjack.Logger)
	require.True(t, ok, "expected a lumberjack writer, got %T", l.Out)
	assert.Equal(t, path, rot.Filename)
	assert.True(t, rot.Compress)
}

func TestGormLogger(t *testing.T) {
	assert.NotNil(t, GormLogger(logrus.New(), true))
	assert.NotNil(t, GormLogger(logrus.New(), false))
}
