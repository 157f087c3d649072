package rubble

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWriterLogger("test", false, &out, &errOut)

	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	logger.Warnf("careful")
	logger.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[test] INFO: shown 2")
	assert.Contains(t, errOut.String(), "[test] WARN: careful")
	assert.Contains(t, errOut.String(), "[test] ERROR: broken")

	logger.SetDebug(true)
	assert.True(t, logger.DebugEnabled())
	logger.Debugf("visible")
	assert.Contains(t, out.String(), "[test] DEBUG: visible")
}

func TestLoggingModule(t *testing.T) {
	var out bytes.Buffer
	app := NewAppBuilder().
		UseModule(LoggingModule{Debug: true, Output: &out}).
		Build()

	app.Logger().Debugf("from the app")
	assert.Contains(t, out.String(), "[rubble] DEBUG: from the app")
}

func TestLoggingModule_CustomLogger(t *testing.T) {
	var out bytes.Buffer
	custom := NewWriterLogger("host", false, &out, &out)
	app := NewAppBuilder().
		UseModule(LoggingModule{Debug: true, Logger: custom}).
		Build()

	require.Same(t, custom, app.Logger())
	assert.True(t, custom.DebugEnabled())
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	app := NewApp()
	require.NotNil(t, app.Logger())
	assert.False(t, app.Logger().DebugEnabled())

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
}
