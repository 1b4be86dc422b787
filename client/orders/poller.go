package orders

import (
	"context"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

const (
	CustomerInterval  = 5 * time.Second
	DashboardInterval = 30 * time.Second
)

// Poller reloads the viewer's orders on a fixed interval. It is the backstop that keeps
// screens correct when no push arrives.
type Poller struct {
	Interval   time.Duration
	ActiveOnly bool
	OnSnapshot func(Snapshot)

	repo *Repository
}

// NewPoller picks the interval from the viewer's role: customers track one order
// closely, restaurants and couriers watch a dashboard.
func NewPoller(repo *Repository, onSnapshot func(Snapshot)) *Poller {
	interval := DashboardInterval
	if repo.Viewer.Role == model.RoleCustomer {
		interval = CustomerInterval
	}
	return &Poller{Interval: interval, OnSnapshot: onSnapshot, repo: repo}
}

// Run loads once immediately and then every Interval until ctx is done. Couriers also
// get the available pool refreshed on each tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	snap := p.repo.Load(ctx, p.ActiveOnly)
	if p.repo.Viewer.Role == model.RoleCourier {
		p.repo.Available(ctx)
	}
	if ctx.Err() != nil {
		return
	}
	if p.OnSnapshot != nil {
		p.OnSnapshot(snap)
	}
}
