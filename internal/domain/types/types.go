// Package types contains the response shapes shared by the service and HTTP layers.
package types

import "encoding/json"

// EntityRecord is the full per-entity view. Name echoes the identifier as
// requested, not the normalized display name.
type EntityRecord struct {
	Name      string          `json:"name"`
	HypeScore json.RawMessage `json:"hype_score"`
	Mentions  json.RawMessage `json:"mentions"`
	TalkTime  json.RawMessage `json:"talk_time"`
	Sentiment json.RawMessage `json:"sentiment"`
}

// EntityMetrics is the mentions/talk-time/sentiment projection.
type EntityMetrics struct {
	Mentions  json.RawMessage `json:"mentions"`
	TalkTime  json.RawMessage `json:"talk_time"`
	Sentiment json.RawMessage `json:"sentiment"`
}

// EntityTrending holds the external trend signals.
type EntityTrending struct {
	GoogleTrends       json.RawMessage `json:"google_trends"`
	WikipediaViews     json.RawMessage `json:"wikipedia_views"`
	RedditMentions     json.RawMessage `json:"reddit_mentions"`
	GoogleNewsMentions json.RawMessage `json:"google_news_mentions"`
}

// LastUpdated carries either a unix timestamp or the "no data" message.
type LastUpdated struct {
	LastUpdated *float64 `json:"last_updated,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// NoDataMessage is returned by LastUpdated before the first upload.
const NoDataMessage = "No data available."

// UploadAck acknowledges a stored document.
type UploadAck struct {
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
	Bytes    int    `json:"bytes"`
	Entities int    `json:"entities"`
}

// UploadSuccessMessage is the acknowledgement text for a stored upload.
const UploadSuccessMessage = "File uploaded successfully!"
