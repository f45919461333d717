package syncer

import "time"

// SyncStatus is the aggregate state exposed to UI-facing consumers. It is a
// snapshot returned by value; nothing hands out live internal state.
type SyncStatus struct {
	IsSyncing    bool       `json:"isSyncing"`
	PendingCount int64      `json:"pendingCount"`
	IsConnected  bool       `json:"isConnected"`
	LastSyncDate *time.Time `json:"lastSyncDate,omitempty"`
}
