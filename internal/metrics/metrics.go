package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prom records schedule, notification and job metrics in Prometheus.
type Prom struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheRequests *prometheus.CounterVec
	groupsChanged prometheus.Counter
	notifications *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer defaults to the
// global Prometheus registerer.
func New(reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prom{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_fetch_total",
			Help: "Schedule page fetches by variant and result",
		}, []string{"variant", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_fetch_duration_seconds",
			Help:    "Time to fetch and parse the schedule page",
			Buckets: prometheus.DefBuckets,
		}, []string{"variant"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_cache_requests_total",
			Help: "Current-day table lookups served from cache or refetched",
		}, []string{"result"}),
		groupsChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_groups_changed_total",
			Help: "Groups whose schedule changed between checks",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Outbound user notifications by kind and result",
		}, []string{"kind", "result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
	}

	var err error
	if p.fetches, err = register(reg, p.fetches); err != nil {
		return nil, err
	}
	if p.fetchDuration, err = register(reg, p.fetchDuration); err != nil {
		return nil, err
	}
	if p.cacheRequests, err = register(reg, p.cacheRequests); err != nil {
		return nil, err
	}
	if p.groupsChanged, err = register(reg, p.groupsChanged); err != nil {
		return nil, err
	}
	if p.notifications, err = register(reg, p.notifications); err != nil {
		return nil, err
	}
	if p.jobRuns, err = register(reg, p.jobRuns); err != nil {
		return nil, err
	}
	return p, nil
}

// register adds c to reg, reusing an already registered collector of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch records one fetch+parse of the schedule page.
func (p *Prom) ObserveFetch(variant string, d time.Duration, err error) {
	p.fetches.WithLabelValues(variant, result(err)).Inc()
	p.fetchDuration.WithLabelValues(variant).Observe(d.Seconds())
}

// CacheLookup records whether a current-day lookup was served from cache.
func (p *Prom) CacheLookup(hit bool) {
	if hit {
		p.cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	p.cacheRequests.WithLabelValues("miss").Inc()
}

// GroupsChanged adds n changed groups.
func (p *Prom) GroupsChanged(n int) {
	p.groupsChanged.Add(float64(n))
}

// NotificationSent records one outbound message.
func (p *Prom) NotificationSent(kind string, err error) {
	p.notifications.WithLabelValues(kind, result(err)).Inc()
}

// JobRun records one scheduled job run.
func (p *Prom) JobRun(job string, err error) {
	p.jobRuns.WithLabelValues(job, result(err)).Inc()
}
