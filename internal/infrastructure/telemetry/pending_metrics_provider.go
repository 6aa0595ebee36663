package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormPendingMetricsProvider implements PendingMetricsProvider using GORM.
// It reads the move_lines and shipments tables directly.
type GormPendingMetricsProvider struct {
	db *gorm.DB
}

// NewGormPendingMetricsProvider creates a new GormPendingMetricsProvider.
func NewGormPendingMetricsProvider(db *gorm.DB) *GormPendingMetricsProvider {
	return &GormPendingMetricsProvider{db: db}
}

// CountPendingLines returns the number of open, not fully received move lines
// grouped by shipment direction.
func (p *GormPendingMetricsProvider) CountPendingLines(ctx context.Context) (map[string]int64, error) {
	type result struct {
		ShipmentType string `gorm:"column:shipment_type"`
		Lines        int64  `gorm:"column:lines"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("move_lines").
		Select("shipments.type AS shipment_type, COUNT(*) AS lines").
		Joins("JOIN shipments ON shipments.id = move_lines.shipment_id").
		Where("move_lines.state IN ? AND move_lines.received_quantity < move_lines.quantity", []string{"draft", "assigned"}).
		Group("shipments.type").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{"incoming": 0, "outgoing": 0}
	for _, r := range results {
		switch r.ShipmentType {
		case "in", "in_return":
			counts["incoming"] += r.Lines
		case "out", "out_return":
			counts["outgoing"] += r.Lines
		}
	}
	return counts, nil
}
