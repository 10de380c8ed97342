package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
# broker on the robot computer
MQTT_BROKER=tcp://localhost:1883
TOPIC_WRIST = robot/wrist
INITIAL_PITCH_DEG=-30
SMOOTHING_ALPHA=0.25
WRIST_MAX_PITCH_DEG=60
ACTUATOR_SERIAL_PORT=/dev/ttyACM0
ACTUATOR_BAUD_RATE=57600
DISPLAY_I2C_BUS=/dev/i2c-3
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teleop_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "robot/wrist", cfg.TopicWrist)
	assert.Equal(t, -30.0, cfg.InitialPitchDeg)
	assert.Equal(t, 0.25, cfg.SmoothingAlpha)
	assert.Equal(t, 60.0, cfg.WristMaxPitchDeg)
	assert.Equal(t, "/dev/ttyACM0", cfg.ActuatorSerialPort)
	assert.Equal(t, 57600, cfg.ActuatorBaudRate)
	assert.Equal(t, "/dev/i2c-3", cfg.DisplayI2CBus)

	// defaults survive
	assert.Equal(t, "teleop/pose/world", cfg.TopicPoseWorld)
	assert.Equal(t, 8080, cfg.WebServerPort)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing broker", "TOPIC_WRIST=x\n", "MQTT_BROKER is required"},
		{"unknown key", "MQTT_BROKER=tcp://b:1883\nFOO=1\n", "unknown config key"},
		{"no equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"alpha zero", "MQTT_BROKER=tcp://b:1883\nSMOOTHING_ALPHA=0\n", "SMOOTHING_ALPHA"},
		{"alpha too big", "MQTT_BROKER=tcp://b:1883\nSMOOTHING_ALPHA=1.5\n", "SMOOTHING_ALPHA"},
		{"bad float", "MQTT_BROKER=tcp://b:1883\nINITIAL_YAW_DEG=abc\n", "INITIAL_YAW_DEG"},
		{"negative limit", "MQTT_BROKER=tcp://b:1883\nWRIST_MAX_ROLL_DEG=-1\n", "WRIST_MAX_ROLL_DEG"},
		{"bad baud", "MQTT_BROKER=tcp://b:1883\nACTUATOR_SERIAL_PORT=/dev/x\nACTUATOR_BAUD_RATE=0\n", "ACTUATOR_BAUD_RATE"},
		{"bad display interval", "MQTT_BROKER=tcp://b:1883\nDISPLAY_UPDATE_INTERVAL=fast\n", "DISPLAY_UPDATE_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teleop_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("MQTT_BROKER=tcp://pi:1883\n"), 0o644))

	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, "tcp://pi:1883", Get().MQTTBroker)

	// later calls are no-ops
	require.NoError(t, InitGlobal(filepath.Join(t.TempDir(), "missing.txt")))
	assert.Equal(t, "tcp://pi:1883", Get().MQTTBroker)
}

func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "teleop_config.txt"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.TopicPoseWorld, cfg.TopicPoseWorld)
	assert.Equal(t, def.InitialPitchDeg, cfg.InitialPitchDeg)
	assert.Empty(t, cfg.DisplayI2CBus)
	assert.Empty(t, cfg.ActuatorSerialPort)
	assert.Equal(t, 60.0, cfg.WristMaxPitchDeg)
}
