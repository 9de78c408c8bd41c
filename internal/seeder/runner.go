package seeder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hypetorch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
	runIDLength         = 8
)

// Run generates a document, uploads it, and verifies every read endpoint
// against it.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString()[:runIDLength],
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting hypetorch seed run",
		logger.String("run_id", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("entities", cfg.NumEntities),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	if cfg.NumEntities < 1 {
		return stats, fmt.Errorf("%w: need at least one entity", ErrVerification)
	}

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Generate and optionally save the document
	g := generateDocument(ctx, stats.RunID, cfg.NumEntities, stats)
	raw, err := g.Marshal()
	if err != nil {
		return stats, fmt.Errorf("document encoding failed: %w", err)
	}
	if cfg.OutputFile != "" {
		if err := saveDocument(ctx, cfg.OutputFile, raw); err != nil {
			logger.Get().Warn(ctx, "failed to save document", logger.Error(err))
		}
	}

	// Step 3: Upload
	ack, err := client.Upload(ctx, raw)
	if err != nil {
		return stats, fmt.Errorf("upload failed: %w", err)
	}
	stats.UploadBytes = len(raw)
	stats.UploadID = ack.UploadID
	logger.Get().Info(ctx, "document uploaded",
		logger.String("upload_id", ack.UploadID),
		logger.Int("bytes", ack.Bytes),
		logger.Int("entities", ack.Entities),
	)

	// Step 4: Verify
	c := &checker{verbose: cfg.Verbose}
	verifyListing(ctx, client, g, c, stats)
	verifyEntities(ctx, cfg, client, g, c)
	verifyUnknown(ctx, client, stats.RunID, c)
	verifyLastUpdated(ctx, client, c)

	stats.ChecksPassed = int(c.passed)
	stats.ChecksFailed = int(c.failed)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	if stats.ChecksFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d checks failed", ErrVerification, stats.ChecksFailed, stats.ChecksFailed+stats.ChecksPassed)
	}
	logger.Get().Info(ctx, "seed run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	var health struct {
		Status string `json:"status"`
	}
	if err := client.GetJSON(ctx, "/healthz", &health); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, health.Status)
	}
	return nil
}

// saveDocument writes the generated document to path.
func saveDocument(ctx context.Context, path string, raw []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, filePermission); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	logger.Get().Info(ctx, "document saved to file", logger.String("filename", path))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate float64
	if total := stats.ChecksPassed + stats.ChecksFailed; total > 0 {
		passRate = float64(stats.ChecksPassed) / float64(total) * PercentageMultiplier
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("run_id", stats.RunID),
		logger.Int("entitiesGenerated", stats.EntitiesGenerated),
		logger.Int("entitiesListed", stats.EntitiesListed),
		logger.Int("uploadBytes", stats.UploadBytes),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.Float64("passRate", passRate),
		logger.Duration("duration", stats.Duration),
	)
}
