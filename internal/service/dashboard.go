package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/market"
)

// Snapshot is everything the dashboard pages show after login.
type Snapshot struct {
	Stats       api.DashboardStats
	Matches     []api.Match
	Inventory   []api.InventoryItem
	Ranking     []api.ESGRanking
	Offers      []api.ResidueOffer
	SampleOffer bool
}

// LoadSnapshot fetches stats, matches, inventory, ranking and offers in
// parallel. The first failure cancels the rest and is returned.
func LoadSnapshot(ctx context.Context, client *api.Client, log *zap.Logger) (Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Stats, err = client.DashboardStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Matches, err = client.Matches(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Inventory, err = client.Inventory(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Ranking, err = client.ESGRanking(gctx)
		return err
	})
	g.Go(func() error {
		offers, err := client.ResidueOffers(gctx)
		if err != nil {
			return err
		}
		snap.Offers, snap.SampleOffer = market.OffersOrSample(offers)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("load dashboard", zap.Error(err))
		return Snapshot{}, err
	}
	return snap, nil
}
