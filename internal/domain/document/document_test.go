package document_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/hypetorch/internal/domain/document"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `{
  "hype_scores": {"Lionel Messi": 87.5, "Nike": 40},
  "mention_counts": {"Lionel Messi": 120},
  "talk_time_counts": {"Lionel Messi": 3.5, "Nobody": null},
  "player_sentiment_scores": {"Lionel Messi": [0.4, {"label": "pos"}]},
  "google_trends": "not a mapping"
}`

func TestParse(t *testing.T) {
	Convey("Given raw upload bytes", t, func() {
		Convey("When they are a valid object", func() {
			doc, err := document.Parse([]byte(sample))

			Convey("Then the document should be populated and re-indented", func() {
				So(err, ShouldBeNil)
				So(doc.Populated(), ShouldBeTrue)
				So(string(doc.Bytes()), ShouldContainSubstring, "\n    \"hype_scores\": {")
				So(json.Valid(doc.Bytes()), ShouldBeTrue)
				So(doc.Len(), ShouldEqual, len(doc.Bytes()))
			})

			Convey("Then re-parsing the stored form should be stable", func() {
				again, err := document.Parse(doc.Bytes())
				So(err, ShouldBeNil)
				So(string(again.Bytes()), ShouldEqual, string(doc.Bytes()))
			})
		})

		Convey("When they are malformed", func() {
			doc, err := document.Parse([]byte("{not json"))

			Convey("Then the parse error should be returned", func() {
				So(doc, ShouldBeNil)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid character")
			})
		})

		Convey("When they are empty", func() {
			_, err := document.Parse([]byte("   "))

			Convey("Then parsing should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a number is beyond float64 range", func() {
			doc, err := document.Parse([]byte(`{"hype_scores": {"X": 1e400, "Y": 123456789012345678901234567890}}`))

			Convey("Then it should be accepted and passed through unchanged", func() {
				So(err, ShouldBeNil)
				v, ok := doc.Lookup(document.HypeScores, "X")
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, "1e400")
				v, _ = doc.Lookup(document.HypeScores, "Y")
				So(string(v), ShouldEqual, "123456789012345678901234567890")
				So(string(doc.Bytes()), ShouldContainSubstring, `"X": 1e400`)
			})
		})

		Convey("When the top level is an object padded with whitespace", func() {
			doc, err := document.Parse([]byte("\n\t  {\"hype_scores\": {\"Nike\": 40}}  \n"))

			Convey("Then its mappings should be exposed", func() {
				So(err, ShouldBeNil)
				So(doc.Keys(document.HypeScores), ShouldResemble, []string{"Nike"})
			})
		})

		Convey("When the top level is not an object", func() {
			doc, err := document.Parse([]byte(`[1, 2, 3]`))

			Convey("Then it should be accepted but expose no mappings", func() {
				So(err, ShouldBeNil)
				So(doc.Populated(), ShouldBeTrue)
				So(doc.Keys(document.HypeScores), ShouldBeEmpty)
				_, ok := doc.Lookup(document.HypeScores, "Lionel Messi")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a parsed document", t, func() {
		doc, err := document.Parse([]byte(sample))
		So(err, ShouldBeNil)

		Convey("When the key exists", func() {
			v, ok := doc.Lookup(document.HypeScores, "Lionel Messi")

			Convey("Then the raw value should pass through", func() {
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, "87.5")
			})
		})

		Convey("When the key is missing from one mapping", func() {
			_, ok := doc.Lookup(document.MentionCounts, "Nike")

			Convey("Then it should be absent", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the value is null", func() {
			v, ok := doc.Lookup(document.TalkTimeCounts, "Nobody")

			Convey("Then it should be present as null", func() {
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, "null")
			})
		})

		Convey("When the mapping is not an object", func() {
			_, ok := doc.Lookup(document.GoogleTrends, "Lionel Messi")

			Convey("Then it should be treated as absent", func() {
				So(ok, ShouldBeFalse)
				So(doc.Mapping(document.GoogleTrends), ShouldBeNil)
			})
		})

		Convey("When the mapping is missing entirely", func() {
			_, ok := doc.Lookup(document.RedditMentions, "Lionel Messi")

			Convey("Then it should be absent", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When listing keys", func() {
			Convey("Then hype_scores keys should be sorted", func() {
				So(doc.Keys(document.HypeScores), ShouldResemble, []string{"Lionel Messi", "Nike"})
			})
		})
	})
}

func TestUnpopulated(t *testing.T) {
	Convey("Given the sentinel document", t, func() {
		doc := document.Unpopulated()

		Convey("Then it should carry only the message", func() {
			So(doc.Populated(), ShouldBeFalse)
			So(string(doc.Bytes()), ShouldEqual, `{"message":"No data available. Upload a file first."}`)
		})

		Convey("Then every mapping access should be absent", func() {
			for _, m := range []string{document.HypeScores, document.MentionCounts, document.PlayerSentimentScores} {
				_, ok := doc.Lookup(m, "Lionel Messi")
				So(ok, ShouldBeFalse)
			}
			So(doc.Keys(document.HypeScores), ShouldNotBeNil)
			So(doc.Keys(document.HypeScores), ShouldBeEmpty)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a parsed document", t, func() {
		doc, err := document.Parse([]byte(sample))
		So(err, ShouldBeNil)

		Convey("When resolving a known entity", func() {
			got := doc.Resolve("Lionel Messi", document.FieldHypeScore, document.FieldMentions, document.FieldSentiment, document.FieldRedditMentions)

			Convey("Then present fields should be found and absent ones defaulted independently", func() {
				So(got[document.FieldHypeScore].Found, ShouldBeTrue)
				So(string(got[document.FieldHypeScore].Value), ShouldEqual, "87.5")
				So(string(got[document.FieldMentions].Value), ShouldEqual, "120")
				So(strings.Contains(string(got[document.FieldSentiment].Value), `"label"`), ShouldBeTrue)
				So(got[document.FieldRedditMentions].Found, ShouldBeFalse)
				So(string(got[document.FieldRedditMentions].Value), ShouldEqual, "0")
			})
		})

		Convey("When resolving an unknown entity", func() {
			got := doc.Resolve("Nobody Known", document.FieldHypeScore, document.FieldMentions, document.FieldTalkTime, document.FieldSentiment)

			Convey("Then every field should come from the default table", func() {
				So(string(got[document.FieldHypeScore].Value), ShouldEqual, `"N/A"`)
				So(string(got[document.FieldMentions].Value), ShouldEqual, `0`)
				So(string(got[document.FieldTalkTime].Value), ShouldEqual, `0`)
				So(string(got[document.FieldSentiment].Value), ShouldEqual, `[]`)
			})
		})
	})
}

func TestDefaultTable(t *testing.T) {
	Convey("Given the defaulting policy", t, func() {
		Convey("Then each field should map to its mapping and default", func() {
			So(document.MappingFor(document.FieldHypeScore), ShouldEqual, document.HypeScores)
			So(document.MappingFor(document.FieldTalkTime), ShouldEqual, document.TalkTimeCounts)
			So(document.MappingFor(document.FieldGoogleNewsMentions), ShouldEqual, document.GoogleNewsMentions)
			So(string(document.Default(document.FieldHypeScore)), ShouldEqual, `"N/A"`)
			So(string(document.Default(document.FieldWikipediaViews)), ShouldEqual, `0`)
			So(string(document.Default(document.FieldSentiment)), ShouldEqual, `[]`)
		})

		Convey("Then defaults returned to callers should not alias the table", func() {
			d := document.Default(document.FieldMentions)
			d[0] = '9'
			So(string(document.Default(document.FieldMentions)), ShouldEqual, `0`)
		})
	})
}
