package monitoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlert(t *testing.T) {
	t.Run("should only log without a dsn", func(t *testing.T) {
		assert.NoError(t, InitErrorTracking("", "dev"))
		assert.NotPanics(t, func() {
			Alert("invitation lifecycle failed", errors.New("step failed"), map[string]string{"repository": "alice/demo"})
			Flush()
		})
	})

	t.Run("should reject an invalid dsn", func(t *testing.T) {
		assert.Error(t, InitErrorTracking("not a dsn", "dev"))
	})
}
