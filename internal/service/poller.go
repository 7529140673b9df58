package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
)

// DefaultPollInterval matches the live inventory refresh of the web dashboard.
const DefaultPollInterval = 5 * time.Second

var inventoryPolls = promauto.With(api.Registry).NewCounterVec(prometheus.CounterOpts{
	Namespace: "reciloop",
	Subsystem: "inventory",
	Name:      "polls_total",
	Help:      "Inventory polls by outcome.",
}, []string{"outcome"})

// InventoryFetcher is the slice of the API the poller needs.
type InventoryFetcher interface {
	Inventory(ctx context.Context) ([]api.InventoryItem, error)
}

// InventoryUpdate is one poll result. Seq counts polls starting at 1,
// failed ones included.
type InventoryUpdate struct {
	Seq   int
	At    time.Time
	Items []api.InventoryItem
	Err   error
}

// InventoryPoller refreshes the inventory on a fixed interval.
type InventoryPoller struct {
	Source   InventoryFetcher
	Interval time.Duration
	Log      *zap.Logger
}

// Run polls immediately and then every Interval until ctx is done. The
// returned channel is closed when polling stops. Errors are delivered as
// updates and polling continues.
func (p *InventoryPoller) Run(ctx context.Context) <-chan InventoryUpdate {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	out := make(chan InventoryUpdate)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		seq := 0
		for {
			seq++
			items, err := p.Source.Inventory(ctx)
			if ctx.Err() != nil {
				return
			}
			outcome := "ok"
			if err != nil {
				outcome = "error"
				log.Warn("inventory poll failed", zap.Int("seq", seq), zap.Error(err))
			}
			inventoryPolls.WithLabelValues(outcome).Inc()

			select {
			case out <- InventoryUpdate{Seq: seq, At: time.Now(), Items: items, Err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
