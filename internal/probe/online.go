package probe

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CheckOnline runs the TCP and TLS probes concurrently against the same
// target. Each probe owns its socket and its own timeout.
func (p *Prober) CheckOnline(ctx context.Context, host string, port int, timeout time.Duration) OnlineResult {
	var (
		wg     sync.WaitGroup
		tcpRes TCPResult
		tlsRes TLSResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tcpRes = p.CheckTCP(ctx, host, port, timeout)
	}()
	go func() {
		defer wg.Done()
		tlsRes = p.CheckTLS(ctx, host, port, timeout)
	}()
	wg.Wait()

	res := OnlineResult{
		Online:    Online(tcpRes, tlsRes),
		Host:      host,
		Port:      port,
		TimeoutMS: timeout.Milliseconds(),
		TCP:       tcpRes,
		TLS:       tlsRes,
	}
	p.logger().Info("online_check",
		zap.String("host", host),
		zap.Int("port", port),
		zap.Bool("online", res.Online),
		zap.Bool("tcp_ok", tcpRes.OK),
		zap.Bool("tls_ok", tlsRes.OK),
		zap.Bool("tls_authorized", tlsRes.Authorized),
	)
	return res
}

// Online is the combined verdict: both probes succeeded and the peer
// certificate chain was verified.
func Online(tcp TCPResult, tls TLSResult) bool {
	return tcp.OK && tls.OK && tls.Authorized
}
