package seeder

import "time"

// Config holds configuration for a seed run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumEntities int           // Number of entities to generate
	Workers     int           // Number of concurrent verification workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Where to save the generated document; empty skips saving
	Verbose     bool          // Log every verified entity
}

// Stats holds run statistics.
type Stats struct {
	RunID             string
	EntitiesGenerated int
	EntitiesListed    int
	UploadBytes       int
	UploadID          string
	ChecksPassed      int
	ChecksFailed      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// UploadAck mirrors the upload endpoint's success body.
type UploadAck struct {
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
	Bytes    int    `json:"bytes"`
	Entities int    `json:"entities"`
}

// LastUpdated mirrors the last_updated endpoint's body.
type LastUpdated struct {
	LastUpdated *float64 `json:"last_updated"`
	Message     string   `json:"message"`
}
