package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reciloop/reciloop/internal/database"
)

// MaintenanceService houses destructive actions on the local journal.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes the activity journal. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"match_acceptances",
			"offer_interests",
			"roi_calculations",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
