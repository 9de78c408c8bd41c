package seeder

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	hypeScoreMax       = 100.0
	mentionsMax        = 500
	talkTimeMax        = 180.0
	trendsMax          = 100
	wikipediaMax       = 250000
	redditMax          = 2000
	newsMax            = 300
	sentimentSamples   = 5
)

// Sparsity: every n-th entity is left out of a mapping so lookups exercise
// their defaults.
const (
	skipTalkTimeEvery  = 3
	skipSentimentEvery = 4
	skipTrendsEvery    = 5
	skipListingEvery   = 7
)

var firstNames = []string{"Lionel", "Erling", "Kylian", "Jude", "Vinicius", "Bukayo", "Pedri", "Jamal", "Florian", "Rodrygo"}

var lastNames = []string{"Messi", "Haaland", "Mbappe", "Bellingham", "Junior", "Saka", "Gonzalez", "Musiala", "Wirtz", "Goes"}

// Document is a generated metrics document, keyed by mapping then entity.
type Document map[string]map[string]any

// Generated is a document together with the entity names it covers.
type Generated struct {
	Doc Document
	// Names holds every generated entity, including ones absent from hype_scores.
	Names []string
}

// Listed returns the entities that appear in hype_scores, sorted.
func (g *Generated) Listed() []string {
	out := make([]string, 0, len(g.Doc[document.HypeScores]))
	for name := range g.Doc[document.HypeScores] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Expected returns the value a lookup of name should produce for f: the
// generated value, or the field's default when name was skipped.
func (g *Generated) Expected(name string, f document.Field) (any, error) {
	if v, ok := g.Doc[document.MappingFor(f)][name]; ok {
		return normalize(v)
	}
	var out any
	if err := json.Unmarshal(document.Default(f), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal renders the document as the producer would.
func (g *Generated) Marshal() ([]byte, error) {
	return json.MarshalIndent(g.Doc, "", "    ")
}

// normalize round-trips v through JSON so it compares equal to decoded responses.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func getRandomInt(maxValue int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(maxValue)))
	return int(n.Int64())
}

// round2 keeps generated floats short in the uploaded document.
func round2(f float64) float64 {
	return float64(int64(f*100)) / 100
}

// entityName builds a unique, space-separated name. Names never contain
// underscores so the underscore form maps back unambiguously.
func entityName(runID string, i int) string {
	return fmt.Sprintf("%s %s %s%d", firstNames[i%len(firstNames)], lastNames[(i/len(firstNames))%len(lastNames)], runID, i)
}

// generateDocument builds a document for n entities.
func generateDocument(ctx context.Context, runID string, n int, stats *Stats) *Generated {
	logger.Get().Info(ctx, "generating document", logger.Int("entities", n), logger.String("run_id", runID))

	g := &Generated{
		Doc: Document{
			document.HypeScores:            {},
			document.MentionCounts:         {},
			document.TalkTimeCounts:        {},
			document.PlayerSentimentScores: {},
			document.GoogleTrends:          {},
			document.WikipediaViews:        {},
			document.RedditMentions:        {},
			document.GoogleNewsMentions:    {},
		},
		Names: make([]string, 0, n),
	}

	for i := 0; i < n; i++ {
		name := entityName(runID, i)
		g.Names = append(g.Names, name)

		// Entity 0 is always listed so the listing is never empty.
		if i == 0 || i%skipListingEvery != 0 {
			g.Doc[document.HypeScores][name] = round2(getRandomFloat() * hypeScoreMax)
		}
		g.Doc[document.MentionCounts][name] = getRandomInt(mentionsMax)
		if i%skipTalkTimeEvery != 1 {
			g.Doc[document.TalkTimeCounts][name] = round2(getRandomFloat() * talkTimeMax)
		}
		if i%skipSentimentEvery != 2 {
			samples := make([]float64, sentimentSamples)
			for j := range samples {
				samples[j] = round2(getRandomFloat()*2 - 1)
			}
			g.Doc[document.PlayerSentimentScores][name] = samples
		}
		if i%skipTrendsEvery != 3 {
			g.Doc[document.GoogleTrends][name] = getRandomInt(trendsMax)
			g.Doc[document.WikipediaViews][name] = getRandomInt(wikipediaMax)
		}
		g.Doc[document.RedditMentions][name] = getRandomInt(redditMax)
		if i%2 == 0 {
			g.Doc[document.GoogleNewsMentions][name] = getRandomInt(newsMax)
		}
	}

	stats.EntitiesGenerated = n
	return g
}
