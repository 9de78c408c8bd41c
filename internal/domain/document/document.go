// Package document models the metrics document produced by the analysis
// pipeline: a single JSON object holding independent name-keyed mappings.
//
// The document is deliberately loosely typed. Only JSON well-formedness is
// checked; the producer owns the shape of every mapping.
package document

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Mapping names inside the document.
const (
	HypeScores            = "hype_scores"
	MentionCounts         = "mention_counts"
	TalkTimeCounts        = "talk_time_counts"
	PlayerSentimentScores = "player_sentiment_scores"
	GoogleTrends          = "google_trends"
	WikipediaViews        = "wikipedia_views"
	RedditMentions        = "reddit_mentions"
	GoogleNewsMentions    = "google_news_mentions"
)

// UnpopulatedMessage is the only content of the sentinel document.
const UnpopulatedMessage = "No data available. Upload a file first."

const indent = "    "

// Document is one parsed metrics document. A Document is not safe for
// concurrent use; each request loads its own.
type Document struct {
	raw       []byte
	members   map[string]json.RawMessage
	mappings  map[string]map[string]json.RawMessage
	populated bool
}

// Parse validates data as JSON and returns the document it describes.
// Any JSON value is accepted; a non-object top level simply exposes no mappings.
func Parse(data []byte) (*Document, error) {
	// RawMessage only checks syntax, so numbers beyond float64 range survive.
	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	top = bytes.TrimSpace(top)

	var buf bytes.Buffer
	if err := json.Indent(&buf, top, "", indent); err != nil {
		return nil, err
	}

	d := &Document{
		raw:       buf.Bytes(),
		mappings:  make(map[string]map[string]json.RawMessage),
		populated: true,
	}
	if top[0] == '{' {
		if err := json.Unmarshal(top, &d.members); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Unpopulated returns the sentinel served before the first upload.
// Every mapping access against it is absent.
func Unpopulated() *Document {
	raw, _ := json.Marshal(map[string]string{"message": UnpopulatedMessage})
	return &Document{
		raw:      raw,
		mappings: make(map[string]map[string]json.RawMessage),
	}
}

// Populated reports whether the document came from an upload.
func (d *Document) Populated() bool { return d.populated }

// Bytes returns the serialized form written to storage.
func (d *Document) Bytes() []byte { return d.raw }

// Len is the size of the serialized form.
func (d *Document) Len() int { return len(d.raw) }

// Mapping returns the named mapping, or nil when it is missing or not a JSON object.
func (d *Document) Mapping(name string) map[string]json.RawMessage {
	if m, ok := d.mappings[name]; ok {
		return m
	}
	var m map[string]json.RawMessage
	if raw, ok := d.members[name]; ok {
		if err := json.Unmarshal(raw, &m); err != nil {
			m = nil
		}
	}
	d.mappings[name] = m
	return m
}

// Lookup returns the value stored under key in mapping. The boolean is false
// when the mapping or the key is absent. A JSON null value counts as present.
func (d *Document) Lookup(mapping, key string) (json.RawMessage, bool) {
	m := d.Mapping(mapping)
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	if v == nil {
		v = json.RawMessage("null")
	}
	return v, true
}

// Keys returns the sorted key set of mapping. Never nil.
func (d *Document) Keys(mapping string) []string {
	m := d.Mapping(mapping)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
