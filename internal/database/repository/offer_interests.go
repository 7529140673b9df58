package repository

import (
	"context"
	"database/sql"
)

// OfferInterestRepo handles offer_interests.
type OfferInterestRepo struct {
	db *sql.DB
}

func NewOfferInterestRepo(db *sql.DB) *OfferInterestRepo { return &OfferInterestRepo{db: db} }

func (r *OfferInterestRepo) Add(ctx context.Context, i OfferInterest) (OfferInterest, error) {
	if i.ID == "" {
		i.ID = newID()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO offer_interests(id, offer_id, offer_name, company, created_at)
	VALUES(?, ?, ?, ?, ?);
	`, i.ID, i.OfferID, i.OfferName, i.Company, i.CreatedAt)
	if err != nil {
		return OfferInterest{}, err
	}
	return i, nil
}

func (r *OfferInterestRepo) List(ctx context.Context, limit int) ([]OfferInterest, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, offer_id, offer_name, company, created_at
	FROM offer_interests
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OfferInterest
	for rows.Next() {
		var i OfferInterest
		if err := rows.Scan(&i.ID, &i.OfferID, &i.OfferName, &i.Company, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// HasInterest reports whether interest in offerID was already recorded.
func (r *OfferInterestRepo) HasInterest(ctx context.Context, offerID int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offer_interests WHERE offer_id = ?`, offerID).Scan(&n)
	return n > 0, err
}

func (r *OfferInterestRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "offer_interests")
}
