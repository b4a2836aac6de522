package netcheck

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/larriantoniy/tg_report_bot/internal/ports"
)

type dialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Prober проверяет сеть перед подключением TDLib. Результат только логируется,
// ретраи остаются на стороне TDLib.
type Prober struct {
	log  *slog.Logger
	dial dialFunc
}

func New(log *slog.Logger) *Prober {
	return &Prober{log: log, dial: net.DialTimeout}
}

func (p *Prober) reachable(network, addr string, timeout time.Duration) error {
	conn, err := p.dial(network, addr, timeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}

func (p *Prober) checkIPv4() bool {
	if err := p.reachable("tcp4", "8.8.8.8:53", 3*time.Second); err != nil {
		p.log.Warn("IPv4 seems not working", "error", err)
		return false
	}
	p.log.Debug("IPv4 OK")
	return true
}

func (p *Prober) checkIPv6() bool {
	if err := p.reachable("tcp6", "[2606:4700:4700::1111]:53", 3*time.Second); err != nil {
		p.log.Debug("IPv6 seems not working", "error", err)
		return false
	}
	p.log.Debug("IPv6 OK")
	return true
}

// checkProxy: для литералов пробуем их семейство, для hostname сначала IPv6, потом IPv4.
func (p *Prober) checkProxy(proxy *ports.ProxyConfig) bool {
	if proxy == nil || !proxy.Enabled {
		p.log.Debug("proxy disabled, skipping check")
		return true
	}

	addr := net.JoinHostPort(proxy.Server, strconv.Itoa(int(proxy.Port)))
	networks := []string{"tcp6", "tcp4"}
	if ip := net.ParseIP(proxy.Server); ip != nil {
		if ip.To4() != nil {
			networks = []string{"tcp4"}
		} else {
			networks = []string{"tcp6"}
		}
	}

	var lastErr error
	for _, network := range networks {
		if lastErr = p.reachable(network, addr, 5*time.Second); lastErr == nil {
			p.log.Info("proxy reachable", "addr", addr, "network", network)
			return true
		}
		p.log.Debug("proxy check failed", "addr", addr, "network", network, "error", lastErr)
	}

	p.log.Error("proxy unreachable", "addr", addr, "error", fmt.Errorf("tried %v: %w", networks, lastErr))
	return false
}

// Run прогоняет все проверки: IPv4, IPv6, прокси.
func (p *Prober) Run(proxy *ports.ProxyConfig) {
	p.checkIPv4()
	p.checkIPv6()
	p.checkProxy(proxy)
}
