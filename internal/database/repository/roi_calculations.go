package repository

import (
	"context"
	"database/sql"
)

// RoiCalculationRepo handles roi_calculations.
type RoiCalculationRepo struct {
	db *sql.DB
}

func NewRoiCalculationRepo(db *sql.DB) *RoiCalculationRepo { return &RoiCalculationRepo{db: db} }

// Add inserts c, filling ID and CreatedAt when unset, and returns the stored row.
func (r *RoiCalculationRepo) Add(ctx context.Context, c RoiCalculation) (RoiCalculation, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO roi_calculations(
	 id, waste_type, volume, disposal_cost, market_price,
	 potential_profit, roi_percentage, payback_days, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		c.ID, c.WasteType, c.Volume, c.DisposalCost, c.MarketPrice,
		c.PotentialProfit, c.ROIPercentage, c.PaybackDays, c.CreatedAt)
	if err != nil {
		return RoiCalculation{}, err
	}
	return c, nil
}

// List returns the most recent calculations first.
func (r *RoiCalculationRepo) List(ctx context.Context, limit int) ([]RoiCalculation, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, waste_type, volume, disposal_cost, market_price,
	 potential_profit, roi_percentage, payback_days, created_at
	FROM roi_calculations
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RoiCalculation
	for rows.Next() {
		var c RoiCalculation
		if err := rows.Scan(&c.ID, &c.WasteType, &c.Volume, &c.DisposalCost, &c.MarketPrice,
			&c.PotentialProfit, &c.ROIPercentage, &c.PaybackDays, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *RoiCalculationRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "roi_calculations")
}
