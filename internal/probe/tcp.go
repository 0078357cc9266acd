package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

const tcpTimeoutMessage = "TCP connection timeout"

// CheckTCP opens one TCP connection to host:port and closes it right away.
// It never returns an error; failures are reported in the result.
func (p *Prober) CheckTCP(ctx context.Context, host string, port int, timeout time.Duration) TCPResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", hostPort(host, port))
	if err != nil {
		res := TCPResult{OK: false, Error: err.Error()}
		if timedOut(ctx, err) {
			res.Error = tcpTimeoutMessage
		}
		p.logger().Debug("tcp_check",
			zap.String("host", host),
			zap.Int("port", port),
			zap.Bool("ok", false),
			zap.String("error", res.Error),
		)
		return res
	}
	lat := latency(start)
	_ = conn.Close()

	p.logger().Debug("tcp_check",
		zap.String("host", host),
		zap.Int("port", port),
		zap.Bool("ok", true),
		zap.Int64("latency_ms", *lat),
	)
	return TCPResult{OK: true, LatencyMS: lat}
}

// timedOut reports whether a dial failed because the probe deadline fired.
func timedOut(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
