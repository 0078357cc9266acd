package probe

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const tlsTimeoutMessage = "TLS connection timeout"

// CheckTLS performs a full TLS handshake against host:port with SNI and
// hostname verification set to host. Certificate details are reported only
// for authorized peers.
func (p *Prober) CheckTLS(ctx context.Context, host string, port int, timeout time.Duration) TLSResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := &tls.Dialer{Config: p.tlsConfig(host)}

	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", hostPort(host, port))
	if err != nil {
		res := TLSResult{OK: false, Authorized: false, Error: err.Error()}
		if timedOut(ctx, err) {
			res.Error = tlsTimeoutMessage
		}
		p.logger().Debug("tls_check",
			zap.String("host", host),
			zap.Int("port", port),
			zap.Bool("ok", false),
			zap.String("error", res.Error),
		)
		return res
	}
	defer conn.Close()
	lat := latency(start)

	res := TLSResult{OK: true, LatencyMS: lat}
	if tc, ok := conn.(*tls.Conn); ok {
		state := tc.ConnectionState()
		res.Authorized = len(state.VerifiedChains) > 0
		res.Protocol = protocolName(state.Version)
		res.ALPNProtocol = state.NegotiatedProtocol
		if res.Authorized {
			res.Cert = certInfo(state.PeerCertificates)
		}
	}

	p.logger().Debug("tls_check",
		zap.String("host", host),
		zap.Int("port", port),
		zap.Bool("ok", true),
		zap.Bool("authorized", res.Authorized),
		zap.String("protocol", res.Protocol),
		zap.String("alpn", res.ALPNProtocol),
		zap.Int64("latency_ms", *lat),
	)
	return res
}

func (p *Prober) tlsConfig(host string) *tls.Config {
	protos := p.NextProtos
	if protos == nil {
		protos = defaultNextProtos
	}
	return &tls.Config{
		ServerName: host,
		RootCAs:    p.RootCAs,
		NextProtos: protos,
		MinVersion: tls.VersionTLS12,
	}
}

func protocolName(v uint16) string {
	switch v {
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	}
	return ""
}

// certInfo extracts the leaf summary; nil when no peer certificate was sent.
func certInfo(chain []*x509.Certificate) *CertInfo {
	if len(chain) == 0 || chain[0] == nil {
		return nil
	}
	leaf := chain[0]
	info := &CertInfo{
		SubjectCN: leaf.Subject.CommonName,
		IssuerCN:  leaf.Issuer.CommonName,
		ValidFrom: certTime(leaf.NotBefore),
		ValidTo:   certTime(leaf.NotAfter),
	}
	if len(leaf.Raw) > 0 {
		sum := sha256.Sum256(leaf.Raw)
		info.Fingerprint256 = fingerprint(sum[:])
	}
	return info
}

func certTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// fingerprint renders bytes as colon separated upper-case hex, "AB:CD:...".
func fingerprint(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}
