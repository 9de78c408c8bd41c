package seeder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/pkg/logger"
)

// maxReportedMismatches bounds how many mismatches are logged individually.
const maxReportedMismatches = 20

// view is one per-entity endpoint and the fields it returns.
type view struct {
	suffix string
	fields []document.Field
}

var views = []view{
	{suffix: "", fields: []document.Field{document.FieldHypeScore, document.FieldMentions, document.FieldTalkTime, document.FieldSentiment}},
	{suffix: "/metrics", fields: []document.Field{document.FieldMentions, document.FieldTalkTime, document.FieldSentiment}},
	{suffix: "/trending", fields: []document.Field{document.FieldGoogleTrends, document.FieldWikipediaViews, document.FieldRedditMentions, document.FieldGoogleNewsMentions}},
}

// checker counts passed and failed checks across workers.
type checker struct {
	passed   int64
	failed   int64
	reported int64
	verbose  bool
}

func (c *checker) pass(ctx context.Context, what string) {
	atomic.AddInt64(&c.passed, 1)
	if c.verbose {
		logger.Get().Debug(ctx, "check passed", logger.String("check", what))
	}
}

func (c *checker) fail(ctx context.Context, what string, err error) {
	atomic.AddInt64(&c.failed, 1)
	if atomic.AddInt64(&c.reported, 1) <= maxReportedMismatches {
		logger.Get().Warn(ctx, "check failed", logger.String("check", what), logger.Error(err))
	}
}

// verifyListing checks /api/entities against the generated hype_scores keys.
func verifyListing(ctx context.Context, client *HTTPClient, g *Generated, c *checker, stats *Stats) {
	var names []string
	if err := client.GetJSON(ctx, "/api/entities", &names); err != nil {
		c.fail(ctx, "listing", err)
		return
	}
	stats.EntitiesListed = len(names)

	want := g.Listed()
	if !reflect.DeepEqual(names, want) {
		c.fail(ctx, "listing", fmt.Errorf("%w: got %d names, want %d", ErrVerification, len(names), len(want)))
		return
	}
	c.pass(ctx, "listing")
}

// verifyEntity checks every per-entity view of name.
func verifyEntity(ctx context.Context, client *HTTPClient, g *Generated, name string, c *checker) {
	id := strings.ReplaceAll(name, " ", "_")
	for _, v := range views {
		what := "entity " + id + v.suffix
		var got map[string]any
		if err := client.GetJSON(ctx, entityPath(name, v.suffix), &got); err != nil {
			c.fail(ctx, what, err)
			continue
		}
		if err := compareView(g, name, id, v, got); err != nil {
			c.fail(ctx, what, err)
			continue
		}
		c.pass(ctx, what)
	}
}

func compareView(g *Generated, name, id string, v view, got map[string]any) error {
	if v.suffix == "" && got["name"] != id {
		return fmt.Errorf("%w: name %v, want %q", ErrVerification, got["name"], id)
	}
	for _, f := range v.fields {
		want, err := g.Expected(name, f)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(got[string(f)], want) {
			return fmt.Errorf("%w: %s = %v, want %v", ErrVerification, f, got[string(f)], want)
		}
	}
	return nil
}

// verifyEntities checks all generated entities using a worker pool.
func verifyEntities(ctx context.Context, cfg *Config, client *HTTPClient, g *Generated, c *checker) {
	logger.Get().Info(ctx, "verifying entities", logger.Int("entities", len(g.Names)), logger.Int("workers", cfg.Workers))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	names := make(chan string, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				verifyEntity(ctx, client, g, name, c)
			}
		}()
	}

	go func() {
		defer close(names)
		for _, name := range g.Names {
			select {
			case <-ctx.Done():
				return
			case names <- name:
			}
		}
	}()

	wg.Wait()
}

// verifyUnknown checks that an entity missing from every mapping gets full defaults.
func verifyUnknown(ctx context.Context, client *HTTPClient, runID string, c *checker) {
	empty := &Generated{Doc: Document{}}
	name := "Nobody " + runID
	id := strings.ReplaceAll(name, " ", "_")
	for _, v := range views {
		what := "unknown " + id + v.suffix
		var got map[string]any
		if err := client.GetJSON(ctx, entityPath(name, v.suffix), &got); err != nil {
			c.fail(ctx, what, err)
			continue
		}
		if err := compareView(empty, name, id, v, got); err != nil {
			c.fail(ctx, what, err)
			continue
		}
		c.pass(ctx, what)
	}
}

// verifyLastUpdated checks that the upload produced a timestamp.
func verifyLastUpdated(ctx context.Context, client *HTTPClient, c *checker) {
	var lu LastUpdated
	if err := client.GetJSON(ctx, "/api/last_updated", &lu); err != nil {
		c.fail(ctx, "last_updated", err)
		return
	}
	if lu.LastUpdated == nil || *lu.LastUpdated <= 0 {
		c.fail(ctx, "last_updated", fmt.Errorf("%w: no timestamp (message %q)", ErrVerification, lu.Message))
		return
	}
	c.pass(ctx, "last_updated")
}
