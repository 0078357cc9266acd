package probe

import (
	"crypto/x509"
	"net"
	"strconv"

	"go.uber.org/zap"
)

// Prober runs TCP and TLS reachability checks. The zero value is usable and
// trusts the system certificate pool.
//
// Fields:
//   - RootCAs: trust store for TLS verification; nil means the system pool.
//     Verification itself cannot be turned off.
//   - NextProtos: ALPN protocols offered during the handshake.
type Prober struct {
	Logger     *zap.Logger
	RootCAs    *x509.CertPool
	NextProtos []string
}

var defaultNextProtos = []string{"h2", "http/1.1"}

func NewProber(logger *zap.Logger) *Prober {
	return &Prober{Logger: logger, NextProtos: defaultNextProtos}
}

func (p *Prober) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
