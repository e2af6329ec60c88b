// Package snapshot keeps the last-known backend state (metric bundle, ingestion
// stats, upload logs) fresh by polling on a fixed interval.
//
// The poll is the only writer: it builds a new Snapshot value and swaps it in
// atomically. Readers never observe a partially updated snapshot, and a
// resource that fails to refresh keeps its previous value.
package snapshot

import (
	"time"

	"govdash/internal/backend"
	"govdash/internal/region"
)

// Resource names one polled backend endpoint.
type Resource string

const (
	ResourceMapData Resource = "map_data"
	ResourceStats   Resource = "stats"
	ResourceLogs    Resource = "logs"
)

// NoticeBackendUnavailable is the localisation key shown while a resource is
// served from the last-known value.
const NoticeBackendUnavailable = "notice_backend_unavailable"

// Notice reports that a resource could not be refreshed in the latest poll.
type Notice struct {
	Resource Resource `json:"resource"`
	Key      string   `json:"key"`
	Detail   string   `json:"detail,omitempty"`
}

// Snapshot is an immutable view of the backend. Never modify a Snapshot
// returned by the poller; build a new one.
type Snapshot struct {
	// Seq increments with every completed poll.
	Seq    uint64
	Bundle *region.Bundle
	// Stats is nil until the first successful fetch.
	Stats *backend.Stats
	Logs  []backend.UploadLog

	PolledAt time.Time
	// Refreshed holds the time each resource last fetched successfully.
	Refreshed map[Resource]time.Time
	Notices   []Notice
}

func empty() *Snapshot {
	return &Snapshot{
		Bundle:    &region.Bundle{},
		Logs:      []backend.UploadLog{},
		Refreshed: map[Resource]time.Time{},
		Notices:   []Notice{},
	}
}

// Stale reports whether any resource failed in the latest poll.
func (s *Snapshot) Stale() bool {
	return len(s.Notices) > 0
}

// HasData reports whether the map bundle has ever been fetched.
func (s *Snapshot) HasData() bool {
	_, ok := s.Refreshed[ResourceMapData]
	return ok
}
