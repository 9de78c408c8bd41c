package entity_test

import (
	"testing"

	"github.com/okian/hypetorch/internal/domain/entity"
	"github.com/smartystreets/goconvey/convey"
)

func TestIdentifierDisplayName(t *testing.T) {
	convey.Convey("Given URL identifiers", t, func() {
		cases := []struct {
			id   entity.Identifier
			want string
		}{
			{"Lionel_Messi", "Lionel Messi"},
			{"Lionel Messi", "Lionel Messi"},
			{"Real_Madrid_CF", "Real Madrid CF"},
			{"_leading", " leading"},
			{"double__gap", "double  gap"},
			{"lionel_messi", "lionel messi"},
			{"Nike", "Nike"},
			{"", ""},
		}

		convey.Convey("Then every underscore should become a space and nothing else should change", func() {
			for _, c := range cases {
				convey.So(c.id.DisplayName(), convey.ShouldEqual, c.want)
			}
		})

		convey.Convey("Then a name containing an underscore cannot be produced", func() {
			convey.So(entity.Identifier("snake_case_fc").DisplayName(), convey.ShouldNotEqual, "snake_case_fc")
		})

		convey.Convey("Then String should return the identifier unchanged", func() {
			convey.So(entity.Identifier("Lionel_Messi").String(), convey.ShouldEqual, "Lionel_Messi")
		})
	})
}
