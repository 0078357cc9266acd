package probe

import (
	"context"
	"time"
)

// TCPResult holds the outcome of a single TCP connect attempt.
// LatencyMS is set only when OK; Error only when not.
type TCPResult struct {
	OK        bool   `json:"ok"`
	LatencyMS *int64 `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CertInfo summarises the leaf certificate of an authorized TLS peer.
type CertInfo struct {
	SubjectCN      string `json:"subjectCN"`
	IssuerCN       string `json:"issuerCN"`
	ValidFrom      string `json:"validFrom"`
	ValidTo        string `json:"validTo"`
	Fingerprint256 string `json:"fingerprint256"`
}

// TLSResult holds the outcome of a single TLS handshake.
type TLSResult struct {
	OK           bool      `json:"ok"`
	LatencyMS    *int64    `json:"latencyMs,omitempty"`
	Authorized   bool      `json:"authorized"`
	Protocol     string    `json:"protocol,omitempty"`
	ALPNProtocol string    `json:"alpnProtocol,omitempty"`
	Cert         *CertInfo `json:"cert,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// OnlineResult combines both probes against one target.
type OnlineResult struct {
	Online    bool      `json:"online"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	TimeoutMS int64     `json:"timeoutMs"`
	TCP       TCPResult `json:"tcp"`
	TLS       TLSResult `json:"tls"`
}

// OnlineChecker is implemented by anything that can run the combined check.
type OnlineChecker interface {
	CheckOnline(ctx context.Context, host string, port int, timeout time.Duration) OnlineResult
}

func latency(start time.Time) *int64 {
	ms := time.Since(start).Milliseconds()
	return &ms
}
