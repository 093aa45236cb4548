package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/prefs"
	"github.com/unclebandit/attestation-tracker/internal/queue"
)

// Instance pairs a dashboard with its refresh loop.
type Instance struct {
	Dashboard *DashboardService
	Scheduler *Scheduler
}

// Registry hands out one dashboard instance per caller and campaign so that
// two callers never share selection or filter state.
type Registry struct {
	Gateway         Gateway
	Queue           queue.Queue
	Topic           string
	Prefs           prefs.Store
	RefreshInterval time.Duration

	ctx       context.Context
	mu        sync.Mutex
	instances map[string]*Instance
}

// NewRegistry creates a registry whose refresh loops live as long as ctx.
func NewRegistry(ctx context.Context, gw Gateway) *Registry {
	return &Registry{
		Gateway:         gw,
		Topic:           queue.ActionsTopic,
		RefreshInterval: DefaultRefreshInterval,
		ctx:             ctx,
		instances:       map[string]*Instance{},
	}
}

func callerKey(caller model.Caller) string {
	return strings.ToLower(caller.Email) + "|" + string(caller.Role) + "|"
}

func instanceKey(caller model.Caller, campaignID int64) string {
	return callerKey(caller) + strconv.FormatInt(campaignID, 10)
}

// Get returns the caller's dashboard for campaignID, loading it on first use.
// A failed first load is returned and nothing is cached. Opening a campaign
// drops the caller's dashboards for other campaigns and stops their loops.
func (r *Registry) Get(ctx context.Context, caller model.Caller, campaignID int64) (*Instance, error) {
	key := instanceKey(caller, campaignID)

	r.mu.Lock()
	inst, ok := r.instances[key]
	r.mu.Unlock()
	if ok {
		return inst, nil
	}

	d := NewDashboardService(r.Gateway, campaignID, caller)
	d.Queue = r.Queue
	d.Topic = r.Topic
	d.Prefs = r.Prefs
	if err := d.RestorePrefs(ctx); err != nil {
		logger.WithField("campaign_id", campaignID).WithError(err).Warn("Failed to restore dashboard preferences")
	}
	if err := d.Load(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.instances[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	var stale []*Instance
	prefix := callerKey(caller)
	for k, other := range r.instances {
		if strings.HasPrefix(k, prefix) {
			stale = append(stale, other)
			delete(r.instances, k)
		}
	}
	inst = &Instance{Dashboard: d, Scheduler: NewScheduler(r.RefreshInterval)}
	inst.Scheduler.Start(r.ctx, d)
	r.instances[key] = inst
	r.mu.Unlock()

	for _, other := range stale {
		other.Scheduler.Stop()
	}
	return inst, nil
}

// Close stops every refresh loop.
func (r *Registry) Close() {
	r.mu.Lock()
	instances := r.instances
	r.instances = map[string]*Instance{}
	r.mu.Unlock()

	for _, inst := range instances {
		inst.Scheduler.Stop()
	}
}
