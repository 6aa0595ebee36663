package scanning

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultLotNumberLayout is the date layout of generated lot numbers
const DefaultLotNumberLayout = "2006-01-02"

// LotNumberer assigns the number of a newly created lot
type LotNumberer interface {
	Next(ctx context.Context, productID uuid.UUID, supplierRef string) string
}

// DateLotNumberer numbers lots after the supplier reference when one was
// scanned, otherwise after the current date
type DateLotNumberer struct {
	Layout string
	Now    func() time.Time
}

// NewDateLotNumberer creates a numberer with the given date layout
func NewDateLotNumberer(layout string) *DateLotNumberer {
	if layout == "" {
		layout = DefaultLotNumberLayout
	}
	return &DateLotNumberer{Layout: layout, Now: time.Now}
}

// Next returns the number for a new lot
func (n *DateLotNumberer) Next(_ context.Context, _ uuid.UUID, supplierRef string) string {
	if supplierRef != "" {
		return supplierRef
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	layout := n.Layout
	if layout == "" {
		layout = DefaultLotNumberLayout
	}
	return now().Format(layout)
}
