package netcheck

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

type dialRecorder struct {
	ok    map[string]bool
	dials []string
}

func (d *dialRecorder) dial(network, addr string, _ time.Duration) (net.Conn, error) {
	d.dials = append(d.dials, network+" "+addr)
	if d.ok[network] {
		c1, c2 := net.Pipe()
		_ = c2.Close()
		return c1, nil
	}
	return nil, errors.New("unreachable")
}

func newTestProber(ok map[string]bool) (*Prober, *dialRecorder) {
	rec := &dialRecorder{ok: ok}
	return &Prober{log: slog.New(slog.NewTextHandler(io.Discard, nil)), dial: rec.dial}, rec
}

func TestProber_ProxyDisabled(t *testing.T) {
	p, rec := newTestProber(nil)
	assert.True(t, p.checkProxy(nil))
	assert.True(t, p.checkProxy(&ports.ProxyConfig{Server: "1.2.3.4", Port: 1080}))
	assert.Empty(t, rec.dials)
}

func TestProber_ProxyLiteralUsesOwnFamily(t *testing.T) {
	p, rec := newTestProber(map[string]bool{"tcp4": true})
	assert.True(t, p.checkProxy(&ports.ProxyConfig{Enabled: true, Server: "10.0.0.1", Port: 1080}))
	assert.Equal(t, []string{"tcp4 10.0.0.1:1080"}, rec.dials)

	p, rec = newTestProber(map[string]bool{"tcp4": true})
	assert.False(t, p.checkProxy(&ports.ProxyConfig{Enabled: true, Server: "::1", Port: 1080}))
	assert.Equal(t, []string{"tcp6 [::1]:1080"}, rec.dials)
}

func TestProber_ProxyHostnameFallsBackToIPv4(t *testing.T) {
	p, rec := newTestProber(map[string]bool{"tcp4": true})
	assert.True(t, p.checkProxy(&ports.ProxyConfig{Enabled: true, Server: "proxy.local", Port: 9050}))
	assert.Equal(t, []string{"tcp6 proxy.local:9050", "tcp4 proxy.local:9050"}, rec.dials)
}

func TestProber_IPFamilies(t *testing.T) {
	p, _ := newTestProber(map[string]bool{"tcp4": true})
	assert.True(t, p.checkIPv4())
	assert.False(t, p.checkIPv6())
}

func TestProber_RunChecksEverything(t *testing.T) {
	p, rec := newTestProber(map[string]bool{"tcp4": true, "tcp6": true})
	p.Run(&ports.ProxyConfig{Enabled: true, Server: "10.0.0.1", Port: 1080})
	assert.Equal(t, []string{"tcp4 8.8.8.8:53", "tcp6 [2606:4700:4700::1111]:53", "tcp4 10.0.0.1:1080"}, rec.dials)
}
