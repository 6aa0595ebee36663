package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	detailed := ErrNotFound.Errorf("shipment %s not found", "IN-7")

	assert.Equal(t, "shipment IN-7 not found", detailed.Error())
	assert.Equal(t, ErrNotFound.Code, detailed.Code)
	assert.True(t, errors.Is(detailed, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load: %w", detailed), ErrNotFound))
	assert.False(t, errors.Is(detailed, ErrInvalidInput))
	assert.False(t, errors.Is(detailed, errors.New("shipment IN-7 not found")))
}
