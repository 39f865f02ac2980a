package ping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostOf(t *testing.T) {
	assert.Equal(t, "oblenergo.cv.ua", HostOf("https://oblenergo.cv.ua/shutdowns/"))
	assert.Equal(t, "127.0.0.1", HostOf("http://127.0.0.1:8080/x?next=1"))
	assert.Equal(t, "", HostOf("::not a url"))
}

func TestPingHostInvalidTarget(t *testing.T) {
	res := NewProber(false).PingHost(context.Background(), "")
	assert.False(t, res.Reachable)
	assert.Equal(t, "", res.Host)
}
