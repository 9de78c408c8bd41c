package document

import "encoding/json"

// Field is a response field backed by one mapping of the document.
type Field string

// Response fields.
const (
	FieldHypeScore          Field = "hype_score"
	FieldMentions           Field = "mentions"
	FieldTalkTime           Field = "talk_time"
	FieldSentiment          Field = "sentiment"
	FieldGoogleTrends       Field = "google_trends"
	FieldWikipediaViews     Field = "wikipedia_views"
	FieldRedditMentions     Field = "reddit_mentions"
	FieldGoogleNewsMentions Field = "google_news_mentions"
)

type policy struct {
	mapping  string
	fallback json.RawMessage
}

var (
	notAvailable = json.RawMessage(`"N/A"`)
	zero         = json.RawMessage(`0`)
	emptySeries  = json.RawMessage(`[]`)
)

// policies is the single defaulting table; absence in a mapping is never an error.
var policies = map[Field]policy{
	FieldHypeScore:          {mapping: HypeScores, fallback: notAvailable},
	FieldMentions:           {mapping: MentionCounts, fallback: zero},
	FieldTalkTime:           {mapping: TalkTimeCounts, fallback: zero},
	FieldSentiment:          {mapping: PlayerSentimentScores, fallback: emptySeries},
	FieldGoogleTrends:       {mapping: GoogleTrends, fallback: zero},
	FieldWikipediaViews:     {mapping: WikipediaViews, fallback: zero},
	FieldRedditMentions:     {mapping: RedditMentions, fallback: zero},
	FieldGoogleNewsMentions: {mapping: GoogleNewsMentions, fallback: zero},
}

// MappingFor returns the document mapping that backs f.
func MappingFor(f Field) string { return policies[f].mapping }

// Default returns the value served for f when its mapping has no entry.
func Default(f Field) json.RawMessage {
	fb := policies[f].fallback
	out := make(json.RawMessage, len(fb))
	copy(out, fb)
	return out
}

// Resolved is a field value together with whether it came from the document.
type Resolved struct {
	Value json.RawMessage
	Found bool
}

// Resolve looks up name for every field in fields, applying the default table
// to absent entries.
func (d *Document) Resolve(name string, fields ...Field) map[Field]Resolved {
	out := make(map[Field]Resolved, len(fields))
	for _, f := range fields {
		if v, ok := d.Lookup(MappingFor(f), name); ok {
			out[f] = Resolved{Value: v, Found: true}
			continue
		}
		out[f] = Resolved{Value: Default(f)}
	}
	return out
}
