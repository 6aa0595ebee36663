package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_GetHandlersOrder(t *testing.T) {
	r := NewHandlerRegistry()
	typed := &testHandler{}
	wildcard := &testHandler{}
	r.Register(wildcard)
	r.Register(typed, "LotCreated")

	handlers := r.GetHandlers("LotCreated")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, r.GetHandlers("Unknown"), 1)
}

func TestHandlerRegistry_GetAllHandlersIsDistinct(t *testing.T) {
	r := NewHandlerRegistry()
	h := &testHandler{}
	r.Register(h, "LotCreated", "ScanApplied")
	r.Register(h)

	assert.Len(t, r.GetAllHandlers(), 1)
}

func TestHandlerRegistry_UnregisterRemovesEmptyTypes(t *testing.T) {
	r := NewHandlerRegistry()
	a, b := &testHandler{}, &testHandler{}
	r.Register(a, "LotCreated")
	r.Register(b, "LotCreated", "ScanApplied")

	r.Unregister(b)
	assert.Len(t, r.GetHandlers("LotCreated"), 1)
	assert.Empty(t, r.GetHandlers("ScanApplied"))
	_, ok := r.handlers["ScanApplied"]
	assert.False(t, ok)

	r.Unregister(a)
	assert.Empty(t, r.GetAllHandlers())
}
