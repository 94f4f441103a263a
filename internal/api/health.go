package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// SystemInfo reports runtime statistics in the readiness response.
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
}

func systemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAlloc:   m.Alloc,
	}
}

// handleLiveness responds as long as the process is serving.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":            true,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"verifier_version": VerifierVersion,
		"uptime":           time.Since(s.startTime).String(),
		"request_id":       middleware.GetReqID(r.Context()),
	})
}

// handleReadiness checks that the store and protocol are wired.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ready := true
	message := "ready"
	if s.db == nil {
		ready = false
		message = "store not initialized"
	} else if _, err := s.db.TotalMinted(); err != nil {
		ready = false
		message = "store unavailable"
	}
	if s.proto == nil {
		ready = false
		message = "protocol not initialized"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]interface{}{
		"ready":            ready,
		"message":          message,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"verifier_version": VerifierVersion,
		"system":           systemInfo(),
		"request_id":       middleware.GetReqID(r.Context()),
	})
}
