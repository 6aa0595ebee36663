package scanning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDateLotNumberer_Next(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	n := NewDateLotNumberer("")
	n.Now = func() time.Time { return fixed }

	t.Run("uses supplier reference when scanned", func(t *testing.T) {
		assert.Equal(t, "SUP-42", n.Next(context.Background(), uuid.New(), "SUP-42"))
	})

	t.Run("falls back to the date", func(t *testing.T) {
		assert.Equal(t, "2024-03-09", n.Next(context.Background(), uuid.New(), ""))
	})

	t.Run("custom layout", func(t *testing.T) {
		custom := &DateLotNumberer{Layout: "20060102-1504", Now: func() time.Time { return fixed }}
		assert.Equal(t, "20240309-1504", custom.Next(context.Background(), uuid.New(), ""))
	})
}
