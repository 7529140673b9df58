package repository

import (
	"context"
	"database/sql"
)

// MatchAcceptanceRepo handles match_acceptances.
type MatchAcceptanceRepo struct {
	db *sql.DB
}

func NewMatchAcceptanceRepo(db *sql.DB) *MatchAcceptanceRepo { return &MatchAcceptanceRepo{db: db} }

func (r *MatchAcceptanceRepo) Add(ctx context.Context, a MatchAcceptance) (MatchAcceptance, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO match_acceptances(id, match_id, waste_name, consumer, score, message, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, a.ID, a.MatchID, a.WasteName, a.Consumer, a.Score, a.Message, a.CreatedAt)
	if err != nil {
		return MatchAcceptance{}, err
	}
	return a, nil
}

func (r *MatchAcceptanceRepo) List(ctx context.Context, limit int) ([]MatchAcceptance, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, match_id, waste_name, consumer, score, message, created_at
	FROM match_acceptances
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MatchAcceptance
	for rows.Next() {
		var a MatchAcceptance
		if err := rows.Scan(&a.ID, &a.MatchID, &a.WasteName, &a.Consumer, &a.Score, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *MatchAcceptanceRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "match_acceptances")
}
