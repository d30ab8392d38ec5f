package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := UUID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("LAPMART_COMMON_TEST", "set")
	assert.Equal(t, "set", EnvString("LAPMART_COMMON_TEST", "fallback"))
	assert.Equal(t, "fallback", EnvString("LAPMART_COMMON_TEST_MISSING", "fallback"))
}
