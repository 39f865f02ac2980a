package ping

import (
	"context"
	"net/url"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"shutdowns-bot/internal/logger"
)

var log = logger.New("ping")

// Result is the outcome of probing the schedule host.
type Result struct {
	Host      string        `json:"host"`
	Reachable bool          `json:"reachable"`
	AvgRTT    time.Duration `json:"avg_rtt"`
}

// Prober sends ICMP echo requests to check that a host is up.
type Prober struct {
	Privileged bool
	Count      int
	Timeout    time.Duration
}

func NewProber(privileged bool) *Prober {
	return &Prober{Privileged: privileged, Count: 3, Timeout: 5 * time.Second}
}

// PingHost sends ICMP pings to the target. Failures to create or run the
// pinger are reported as unreachable.
func (p *Prober) PingHost(ctx context.Context, target string) Result {
	res := Result{Host: target}
	pinger, err := probing.NewPinger(target)
	if err != nil {
		log.Warnf("failed to create pinger for %s: %v", target, err)
		return res
	}
	pinger.Count = p.Count
	pinger.Timeout = p.Timeout
	pinger.SetPrivileged(p.Privileged)
	if err := pinger.RunWithContext(ctx); err != nil {
		log.Debugf("ping %s: %v", target, err)
		return res
	}
	stats := pinger.Statistics()
	res.Reachable = stats.PacketsRecv > 0
	res.AvgRTT = stats.AvgRtt
	return res
}

// HostOf extracts the host name of a page URL.
func HostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
