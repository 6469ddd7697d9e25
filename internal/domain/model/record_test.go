package model_test

import (
	"testing"

	model "github.com/okian/folio/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetadataRecord_Usable(t *testing.T) {
	Convey("Given metadata records", t, func() {
		Convey("A record with a title is usable", func() {
			So(model.MetadataRecord{Title: "Dune"}.Usable(), ShouldBeTrue)
		})

		Convey("A record without a title is not usable", func() {
			So(model.MetadataRecord{SourceID: "x", ExternalID: "1"}.Usable(), ShouldBeFalse)
		})

		Convey("A whitespace title is not usable", func() {
			So(model.MetadataRecord{Title: "  \t"}.Usable(), ShouldBeFalse)
		})
	})
}

func TestMetadataRecord_ISBN(t *testing.T) {
	Convey("Given a record with an isbn identifier", t, func() {
		rec := model.MetadataRecord{
			Identifiers: map[string]string{model.IdentifierISBN: "9780441172719", "goodreads": "42"},
		}

		Convey("ISBN returns the isbn scheme value", func() {
			So(rec.ISBN(), ShouldEqual, "9780441172719")
		})
	})

	Convey("Given a record without identifiers", t, func() {
		Convey("ISBN returns empty", func() {
			So(model.MetadataRecord{}.ISBN(), ShouldEqual, "")
		})
	})
}

func TestMetadataRecord_Clone(t *testing.T) {
	Convey("Given a fully populated record", t, func() {
		rec := model.MetadataRecord{
			SourceID:    "openlibrary",
			ExternalID:  "/works/OL893415W",
			Title:       "Dune",
			Authors:     []string{"Frank Herbert"},
			Languages:   []string{"en"},
			Tags:        []string{"science fiction"},
			Identifiers: map[string]string{model.IdentifierISBN: "9780441172719"},
		}

		Convey("When cloning and mutating the clone", func() {
			clone := rec.Clone()
			clone.Authors[0] = "Someone Else"
			clone.Tags = append(clone.Tags, "space opera")
			clone.Identifiers["asin"] = "B00B7NPRY8"

			Convey("Then the original record is unchanged", func() {
				So(rec.Authors[0], ShouldEqual, "Frank Herbert")
				So(rec.Tags, ShouldResemble, []string{"science fiction"})
				So(rec.Identifiers, ShouldResemble, map[string]string{model.IdentifierISBN: "9780441172719"})
			})
		})

		Convey("Cloning a zero record keeps nil slices nil", func() {
			clone := model.MetadataRecord{}.Clone()
			So(clone.Authors, ShouldBeNil)
			So(clone.Identifiers, ShouldBeNil)
		})
	})
}
