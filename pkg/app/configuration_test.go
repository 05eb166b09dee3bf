package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/onair-indicator/pkg/common"
)

func TestConfiguration_defaultsAreValid(t *testing.T) {
	instance := NewConfiguration()

	require.NoError(t, instance.validate())

	assert.True(t, instance.MonitorCameras)
	assert.True(t, instance.MonitorMicrophones)
	assert.True(t, instance.HonorConferenceMute)
	assert.Equal(t, 5*time.Second, instance.CameraOffDebounce)
	assert.Equal(t, 5*time.Second, instance.ConferencePollInterval)
	assert.Contains(t, instance.ConferenceProcessNames, "Zoom.exe")
	assert.False(t, instance.Indicators.Border.Enabled)
}

func TestConfiguration_saveAndLoadRoundTrip(t *testing.T) {
	original := NewConfiguration()
	original.CameraOffDebounce = 1234 * time.Millisecond
	original.ExcludedDeviceNames = common.MustNewRegexp(`(?i)virtual`)
	original.Indicators.Border.Enabled = true
	original.Indicators.Border.Thickness = 12

	fn := filepath.Join(t.TempDir(), "configuration.yml")
	require.NoError(t, original.saveToFile(fn))

	actual := NewConfiguration()
	require.NoError(t, actual.loadFromFile(fn, false))

	assert.Equal(t, original.CameraOffDebounce, actual.CameraOffDebounce)
	assert.Equal(t, original.ExcludedDeviceNames.String(), actual.ExcludedDeviceNames.String())
	assert.Equal(t, original.Indicators.Border, actual.Indicators.Border)
	assert.Equal(t, original.ConferenceProcessNames, actual.ConferenceProcessNames)
}

func TestConfiguration_loadRejectsUnknownFields(t *testing.T) {
	instance := NewConfiguration()

	err := instance.loadFrom(strings.NewReader("noSuchSetting: true\n"))

	assert.ErrorContains(t, err, "noSuchSetting")
}

func TestConfiguration_loadOfAbsentFileCanBeIgnored(t *testing.T) {
	instance := NewConfiguration()
	fn := filepath.Join(t.TempDir(), "does-not-exist.yml")

	assert.NoError(t, instance.loadFromFile(fn, true))
	assert.Error(t, instance.loadFromFile(fn, false))
}

func TestConfiguration_validateRejectsBrokenValues(t *testing.T) {
	instance := NewConfiguration()
	instance.CheckInterval = 0

	assert.ErrorContains(t, instance.validate(), "CheckInterval")

	instance = NewConfiguration()
	instance.CameraOffDebounce = -1 * time.Second

	assert.ErrorContains(t, instance.validate(), "CameraOffDebounce")
}

func TestConfiguration_savedFormIsReadableYaml(t *testing.T) {
	instance := NewConfiguration()

	var buf bytes.Buffer
	require.NoError(t, instance.saveTo(&buf))

	assert.Contains(t, buf.String(), "monitorCameras: true")
	assert.Contains(t, buf.String(), "conferenceProcessNames:")
}
