package models

import "time"

// SnapshotStatus describes the catalog snapshot currently being served.
type SnapshotStatus struct {
	Version        uint64    `json:"version"`
	Items          int       `json:"items"`
	Dimensions     int       `json:"dimensions"`
	LoadedAt       time.Time `json:"loaded_at"`
	CatalogPath    string    `json:"catalog_path"`
	EmbeddingsPath string    `json:"embeddings_path"`
	Columns        []string  `json:"columns,omitempty"`
}

// StatusResponse is the response for GET /api/v1/status.
type StatusResponse struct {
	Status         string          `json:"status"`
	Version        string          `json:"version,omitempty"`
	Snapshot       *SnapshotStatus `json:"snapshot,omitempty"`
	HarvestedItems *int64          `json:"harvested_items,omitempty"`
	LastHarvest    *HarvestRun     `json:"last_harvest,omitempty"`
	DiskUsageBytes int64           `json:"disk_usage_bytes,omitempty"`
	Config         map[string]any  `json:"config,omitempty"`
}

// ReloadResponse is the response for POST /api/v1/reload.
type ReloadResponse struct {
	Status   string          `json:"status"`
	Snapshot *SnapshotStatus `json:"snapshot"`
}
