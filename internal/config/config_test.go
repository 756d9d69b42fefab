package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// unset clears key for the test and restores it afterwards.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaultPortBindsWithColonPrefix(t *testing.T) {
	unset(t, "PORT")

	cfg := Load()

	// main builds the listen address as ":" + Port, so the default must
	// not carry its own colon.
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, strings.HasPrefix(cfg.Server.Port, ":"))
}

func TestLoadPortFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestLoadKafkaDefaults(t *testing.T) {
	unset(t, "KAFKA_ENABLED")
	unset(t, "KAFKA_GROUP_ID")

	cfg := Load()

	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "ventar-activity", cfg.Kafka.GroupID)
	assert.Equal(t, "ventar.events.created", cfg.Kafka.Topics.EventCreated)
}
