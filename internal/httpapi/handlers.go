package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/probe"
)

func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	q, bad := parseOnlineQuery(r.URL.Query())
	if bad != nil {
		writeError(w, errInvalidParams(bad), nil)
		return
	}

	// anti-SSRF: fixed port, then the host allowlist
	if !probe.PortAllowed(q.Port) {
		writeError(w, &APIError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_port",
			Message: fmt.Sprintf("Only port %d is allowed", probe.AllowedPort),
		}, nil)
		return
	}
	if !s.Allow.Allowed(q.Host) {
		writeError(w, &APIError{
			Status:  http.StatusBadRequest,
			Code:    "host_not_allowed",
			Message: fmt.Sprintf("Host '%s' is not in the allowlist", q.Host),
		}, nil)
		return
	}

	res := s.Checker.CheckOnline(r.Context(), q.Host, q.Port, q.Timeout)
	if res.Online {
		writeData(w, http.StatusOK, res)
		return
	}
	writeError(w, &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "offline",
		Message: fmt.Sprintf("Host '%s' is offline or unreachable", q.Host),
	}, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Monitor.Snapshot(r.Context(), s.StatusMaxAge)
	code := http.StatusOK
	if st.Status == domain.Unhealthy {
		code = http.StatusServiceUnavailable
	}
	writeData(w, code, st)
}

type hostsResponse struct {
	Hosts []string `json:"hosts"`
	Port  int      `json:"port"`
}

func (s *Server) handleHosts(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, hostsResponse{Hosts: s.Allow.Hosts(), Port: probe.AllowedPort})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r.URL.Query().Get("limit"), defaultHistoryLimit, maxHistoryLimit)
	if !ok {
		writeError(w, errInvalidParams(map[string]string{
			"limit": fmt.Sprintf("limit must be a positive integer (max %d)", maxHistoryLimit),
		}), nil)
		return
	}
	rows, err := s.Results.History(r.Context(), r.URL.Query().Get("service"), limit)
	if err != nil {
		s.Logger.Error("history_error", zap.Error(err))
		writeError(w, &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "could not load history",
		}, nil)
		return
	}
	writeData(w, http.StatusOK, rows)
}

// handleRecheck forces a monitor run and records its rows.
func (s *Server) handleRecheck(w http.ResponseWriter, r *http.Request) {
	st := s.Monitor.Check(r.Context())
	for i := range st.Services {
		if err := s.Results.Append(r.Context(), &st.Services[i]); err != nil {
			s.Logger.Warn("recheck_append_error",
				zap.String("service", st.Services[i].Name),
				zap.Error(err),
			)
		}
	}
	s.Logger.Info("recheck", zap.String("status", string(st.Status)))
	writeData(w, http.StatusOK, st)
}
