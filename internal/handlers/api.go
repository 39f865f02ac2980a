package handlers

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shutdowns-bot/internal/ping"
	"shutdowns-bot/internal/schedule"
)

// Tables is the schedule cache as seen by the API.
type Tables interface {
	GetTable(ctx context.Context, opts schedule.Options) (schedule.Table, error)
	Snapshot() (schedule.Snapshot, bool)
}

type GroupCounter interface {
	CountByGroup(ctx context.Context) (map[int]int, error)
}

type Prober interface {
	PingHost(ctx context.Context, target string) ping.Result
}

type Handlers struct {
	Tables Tables
	Subs   GroupCounter
	// Prober checks UpstreamHost for /api/health; nil skips the probe.
	Prober       Prober
	UpstreamHost string
	Gatherer     prometheus.Gatherer
	Now          func() time.Time

	// Last probe result, reused for UpstreamCacheTTL.
	upstreamMu  sync.Mutex
	upstreamRes ping.Result
	upstreamAt  time.Time
}

const (
	requestTimeout = 45 * time.Second
	// UpstreamCacheTTL is how long a probe of the schedule site is reused.
	UpstreamCacheTTL = 30 * time.Second
)

// Register mounts the API routes on app.
func (h *Handlers) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/schedule", h.GetSchedule)
	api.Get("/schedule/:group", h.GetGroup)
	api.Get("/health", h.Health)
	api.Get("/stats", h.Stats)

	gatherer := h.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// GetSchedule handles GET /api/schedule?next=1&force=1.
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	opts := options(c)
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	table, err := h.Tables.GetTable(ctx, opts)
	if err != nil {
		return scheduleError(c, err)
	}

	fetchedAt := h.now()
	if !opts.Next {
		if snap, ok := h.Tables.Snapshot(); ok {
			fetchedAt = snap.FetchedAt
		}
	}
	return c.JSON(fiber.Map{
		"fetched_at": fetchedAt.Format(time.RFC3339),
		"next":       opts.Next,
		"groups":     table,
	})
}

// GetGroup handles GET /api/schedule/:group?next=1 and returns the outage
// intervals of one group.
func (h *Handlers) GetGroup(c *fiber.Ctx) error {
	group, err := strconv.Atoi(c.Params("group"))
	if err != nil || group <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid group"})
	}
	opts := options(c)
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	table, err := h.Tables.GetTable(ctx, opts)
	if err != nil {
		return scheduleError(c, err)
	}
	intervals, err := table.Intervals(group)
	if err != nil {
		return scheduleError(c, err)
	}
	if intervals == nil {
		intervals = []schedule.Interval{}
	}

	text := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		text = append(text, iv.String())
	}
	return c.JSON(fiber.Map{
		"group":     group,
		"next":      opts.Next,
		"intervals": intervals,
		"text":      text,
	})
}

// Health reports the cached snapshot age and whether the schedule site answers pings.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok"}
	if snap, ok := h.Tables.Snapshot(); ok {
		resp["snapshot_age_sec"] = int(h.now().Sub(snap.FetchedAt).Seconds())
		resp["groups"] = len(snap.Table)
	} else {
		resp["snapshot_age_sec"] = nil
	}
	if h.Prober != nil && h.UpstreamHost != "" {
		resp["upstream"] = h.upstream(c.UserContext())
	}
	return c.JSON(resp)
}

// upstream probes the schedule site at most once per UpstreamCacheTTL.
// Requests arriving during a probe wait for its result.
func (h *Handlers) upstream(ctx context.Context) ping.Result {
	h.upstreamMu.Lock()
	defer h.upstreamMu.Unlock()
	if !h.upstreamAt.IsZero() && h.now().Sub(h.upstreamAt) < UpstreamCacheTTL {
		return h.upstreamRes
	}
	res := h.Prober.PingHost(ctx, h.UpstreamHost)
	h.upstreamRes = res
	h.upstreamAt = h.now()
	return res
}

// Stats returns subscriber counts per group.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	counts, err := h.Subs.CountByGroup(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load subscribers"})
	}
	byGroup := make(map[string]int, len(counts))
	total := 0
	for g, n := range counts {
		byGroup[strconv.Itoa(g)] = n
		total += n
	}
	return c.JSON(fiber.Map{"subscribers": total, "by_group": byGroup})
}

func options(c *fiber.Ctx) schedule.Options {
	return schedule.Options{
		Next:  c.QueryBool("next"),
		Force: c.QueryBool("force"),
	}
}

// scheduleError maps core errors to HTTP statuses.
func scheduleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, schedule.ErrNoSuchGroup):
		status = fiber.StatusNotFound
	case errors.Is(err, schedule.ErrNetwork), errors.Is(err, schedule.ErrParse), errors.Is(err, schedule.ErrShape):
		status = fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
