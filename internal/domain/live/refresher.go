package live

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parkspot/parkspot-api/internal/domain/analytics"
)

// DashboardSource builds an owner's snapshot.
type DashboardSource interface {
	Today(ctx context.Context, ownerID uuid.UUID) (*analytics.Dashboard, error)
}

// DashboardRefresher periodically pushes analytics to connected owners.
type DashboardRefresher struct {
	hub       *Hub
	source    DashboardSource
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewDashboardRefresher(hub *Hub, source DashboardSource, interval time.Duration) (*DashboardRefresher, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &DashboardRefresher{hub: hub, source: source, interval: interval, scheduler: s}, nil
}

// Start schedules the refresh job and starts the scheduler.
func (r *DashboardRefresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh, context.Background()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("owner-dashboard-refresh"),
	)
	if err != nil {
		return err
	}
	r.scheduler.Start()
	log.Info().Dur("interval", r.interval).Msg("Dashboard refresher started")
	return nil
}

func (r *DashboardRefresher) refresh(ctx context.Context) {
	for _, ownerID := range r.hub.ConnectedOwners() {
		d, err := r.source.Today(ctx, ownerID)
		if err != nil {
			log.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("Dashboard refresh failed")
			continue
		}
		r.hub.SendDashboard(ownerID, d)
	}
}

func (r *DashboardRefresher) Stop() error {
	return r.scheduler.Shutdown()
}
