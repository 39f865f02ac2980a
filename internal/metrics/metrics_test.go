package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := New(reg)
	require.NoError(t, err)

	p.ObserveFetch("current", 150*time.Millisecond, nil)
	p.ObserveFetch("next", time.Second, errors.New("boom"))
	p.CacheLookup(true)
	p.CacheLookup(true)
	p.CacheLookup(false)
	p.GroupsChanged(3)
	p.NotificationSent("daily", nil)
	p.JobRun("warning", errors.New("fail"))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.fetches.WithLabelValues("current", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.fetches.WithLabelValues("next", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.groupsChanged))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.notifications.WithLabelValues("daily", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.jobRuns.WithLabelValues("warning", "error")))
}

func TestPromReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.GroupsChanged(1)
	second.GroupsChanged(1)
	assert.Equal(t, 2.0, testutil.ToFloat64(second.groupsChanged))
}
