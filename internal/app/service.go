// Package service implements the lookup operations behind the HTTP API on top
// of a repository.Store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/hypetorch/internal/adapters/repository"
	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/internal/domain/entity"
	"github.com/okian/hypetorch/internal/domain/types"
	"github.com/okian/hypetorch/pkg/logger"
	"github.com/okian/hypetorch/pkg/metrics"
)

// Lookup views, used as metrics labels.
const (
	viewEntity   = "entity"
	viewMetrics  = "metrics"
	viewTrending = "trending"
)

var (
	entityFields   = []document.Field{document.FieldHypeScore, document.FieldMentions, document.FieldTalkTime, document.FieldSentiment}
	metricsFields  = []document.Field{document.FieldMentions, document.FieldTalkTime, document.FieldSentiment}
	trendingFields = []document.Field{document.FieldGoogleTrends, document.FieldWikipediaViews, document.FieldRedditMentions, document.FieldGoogleNewsMentions}
)

// Service implements the API dependencies. It holds no document state: every
// call loads the document from the store.
type Service struct {
	mu sync.RWMutex

	store          repository.Store
	degradeCorrupt bool
	now            func() time.Time
	newID          func() string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDegradeCorruptStore serves the unpopulated sentinel instead of failing
// when the stored document cannot be parsed.
func WithDegradeCorruptStore(degrade bool) Option {
	return func(s *Service) {
		s.degradeCorrupt = degrade
	}
}

// WithClock overrides the clock used for document age.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides upload id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs a Service. Without WithStore it uses an in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start finishes wiring and logs the configuration.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Warn(ctx, "no store configured; documents will not survive a restart")
	}

	s.started = true
	s.logger.Info(ctx, "hype service started",
		logger.String("backend", s.store.Backend()),
		logger.Bool("degradeCorruptStore", s.degradeCorrupt),
	)
	return nil
}

// Stop releases the store if it holds resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "hype service stopped")
}

// Backend names the configured store backend.
func (s *Service) Backend() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return ""
	}
	return s.store.Backend()
}

func (s *Service) deps() (repository.Store, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.logger, nil
}

// load reads the current document, applying the corrupt-store policy.
func (s *Service) load(ctx context.Context) (*document.Document, error) {
	store, log, err := s.deps()
	if err != nil {
		return nil, err
	}
	doc, err := store.Load(ctx)
	if err == nil {
		return doc, nil
	}
	if s.degradeCorrupt && errors.Is(err, repository.ErrStorageRead) {
		log.Warn(ctx, "stored document unreadable; serving empty data", logger.Error(err))
		return document.Unpopulated(), nil
	}
	log.Error(ctx, "loading document failed", logger.Error(err))
	return nil, err
}

// ListEntities returns the keys of hype_scores. Entities present only in other
// mappings are not listed.
func (s *Service) ListEntities(ctx context.Context) ([]string, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordEntityListing()
	return doc.Keys(document.HypeScores), nil
}

// Entity returns the full record for id. Unknown entities are never an error;
// every absent field takes its default.
func (s *Service) Entity(ctx context.Context, id string) (types.EntityRecord, error) {
	values, err := s.resolve(ctx, viewEntity, id, entityFields)
	if err != nil {
		return types.EntityRecord{}, err
	}
	return types.EntityRecord{
		Name:      id,
		HypeScore: values[document.FieldHypeScore],
		Mentions:  values[document.FieldMentions],
		TalkTime:  values[document.FieldTalkTime],
		Sentiment: values[document.FieldSentiment],
	}, nil
}

// EntityMetrics returns the mentions/talk-time/sentiment projection for id.
func (s *Service) EntityMetrics(ctx context.Context, id string) (types.EntityMetrics, error) {
	values, err := s.resolve(ctx, viewMetrics, id, metricsFields)
	if err != nil {
		return types.EntityMetrics{}, err
	}
	return types.EntityMetrics{
		Mentions:  values[document.FieldMentions],
		TalkTime:  values[document.FieldTalkTime],
		Sentiment: values[document.FieldSentiment],
	}, nil
}

// EntityTrending returns the four trend values for id, each defaulted independently.
func (s *Service) EntityTrending(ctx context.Context, id string) (types.EntityTrending, error) {
	values, err := s.resolve(ctx, viewTrending, id, trendingFields)
	if err != nil {
		return types.EntityTrending{}, err
	}
	return types.EntityTrending{
		GoogleTrends:       values[document.FieldGoogleTrends],
		WikipediaViews:     values[document.FieldWikipediaViews],
		RedditMentions:     values[document.FieldRedditMentions],
		GoogleNewsMentions: values[document.FieldGoogleNewsMentions],
	}, nil
}

func (s *Service) resolve(ctx context.Context, view, id string, fields []document.Field) (map[document.Field]json.RawMessage, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	name := entity.Identifier(id).DisplayName()
	resolved := doc.Resolve(name, fields...)

	out := make(map[document.Field]json.RawMessage, len(resolved))
	found := false
	for f, r := range resolved {
		out[f] = r.Value
		if r.Found {
			found = true
			continue
		}
		metrics.RecordFieldDefaulted(string(f))
	}
	metrics.RecordEntityLookup(view, found)
	return out, nil
}

// LastUpdated reports when the document was last replaced, or the "no data"
// message before the first upload.
func (s *Service) LastUpdated(ctx context.Context) (types.LastUpdated, error) {
	store, log, err := s.deps()
	if err != nil {
		return types.LastUpdated{}, err
	}
	t, ok, err := store.LastModified(ctx)
	if err != nil {
		log.Error(ctx, "reading modification time failed", logger.Error(err))
		return types.LastUpdated{}, err
	}
	if !ok {
		return types.LastUpdated{Message: types.NoDataMessage}, nil
	}
	ts := float64(t.UnixNano()) / float64(time.Second)
	return types.LastUpdated{LastUpdated: &ts}, nil
}

// Upload parses raw as JSON and replaces the stored document with it. A parse
// failure returns ErrBadUpload and leaves the store untouched.
func (s *Service) Upload(ctx context.Context, raw []byte) (types.UploadAck, error) {
	store, log, err := s.deps()
	if err != nil {
		return types.UploadAck{}, err
	}
	uploadID := s.newID()

	doc, err := document.Parse(raw)
	if err != nil {
		metrics.RecordUpload("rejected")
		log.Warn(ctx, "rejected upload", logger.String("upload_id", uploadID), logger.Int("bytes", len(raw)), logger.Error(err))
		return types.UploadAck{}, fmt.Errorf("%w: %w", ErrBadUpload, err)
	}

	if err := store.Replace(ctx, doc); err != nil {
		metrics.RecordUpload("failed")
		log.Error(ctx, "storing upload failed", logger.String("upload_id", uploadID), logger.Error(err))
		return types.UploadAck{}, err
	}

	entities := len(doc.Keys(document.HypeScores))
	metrics.RecordUpload("accepted")
	metrics.RecordUploadBytes(doc.Len())
	metrics.UpdateTrackedEntities(entities)
	metrics.UpdateStorePopulated(true)
	log.Info(ctx, "document replaced",
		logger.String("upload_id", uploadID),
		logger.Int("bytes", doc.Len()),
		logger.Int("entities", entities),
	)

	return types.UploadAck{
		Message:  types.UploadSuccessMessage,
		UploadID: uploadID,
		Bytes:    doc.Len(),
		Entities: entities,
	}, nil
}

// GetStats returns service statistics for monitoring and refreshes the
// document gauges as a side effect.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": started,
		"backend": s.Backend(),
	}
	if !started {
		return stats
	}

	ctx := context.Background()
	store, _, err := s.deps()
	if err != nil {
		return stats
	}
	doc, err := s.load(ctx)
	if err != nil {
		stats["error"] = err.Error()
		return stats
	}
	entities := len(doc.Keys(document.HypeScores))
	stats["populated"] = doc.Populated()
	stats["trackedEntities"] = entities
	stats["documentBytes"] = doc.Len()

	metrics.UpdateStorePopulated(doc.Populated())
	metrics.UpdateTrackedEntities(entities)

	if t, ok, err := store.LastModified(ctx); err == nil && ok {
		age := s.now().Sub(t)
		stats["lastUpdated"] = t.UTC().Format(time.RFC3339)
		stats["documentAgeSeconds"] = age.Seconds()
		metrics.UpdateDocumentAge(age)
	}
	return stats
}
