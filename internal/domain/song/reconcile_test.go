package song_test

import (
	"testing"

	"github.com/okian/ddrsync/internal/domain/song"
	. "github.com/smartystreets/goconvey/convey"
)

func primaryRec(id, name string) song.PrimaryRecord {
	return song.PrimaryRecord{ID: song.MustParseID(id), Name: name, Ratings: song.Ratings{1, 4, 7, 10}}
}

const (
	idA = "6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q"
	idB = "0bq9qI9PoPIlQl89bDO60o9q8I1iIP66"
	idC = "ld6P1lbb0bPO9doqbbPOoPb8qoDo8id0"
	idD = "qOlDPoiqibIOqod69dPilbiqD6qdO1qQ"
)

func TestReconcileByTitle(t *testing.T) {
	Convey("Given primary and secondary lists with spelling differences", t, func() {
		primary := []song.PrimaryRecord{
			primaryRec(idA, "I!O"),
			primaryRec(idB, "New Song"),
			primaryRec(idC, "Possession(EDP Mix)"),
		}
		secondary := []song.SecondaryRecord{
			{LocalID: 7, Name: "Possession （EDP Mix）"},
			{LocalID: 3, Name: "I！O"},
			{LocalID: 9, Name: "Old Song"},
		}

		Convey("When reconciled", func() {
			cat, report := song.Reconcile(primary, secondary)

			Convey("Then every primary record should become one song", func() {
				So(cat.Len(), ShouldEqual, len(primary))
				So(report.Strategy, ShouldEqual, song.StrategyTitle)
			})

			Convey("And matching titles should be linked", func() {
				a, ok := cat.Lookup(song.MustParseID(idA))
				So(ok, ShouldBeTrue)
				So(a.Linked, ShouldBeTrue)
				So(a.LocalID, ShouldEqual, song.LocalID(3))

				c, _ := cat.Lookup(song.MustParseID(idC))
				So(c.LocalID, ShouldEqual, song.LocalID(7))

				b, _ := cat.Lookup(song.MustParseID(idB))
				So(b.Linked, ShouldBeFalse)
			})

			Convey("And the report should count both unmatched sides", func() {
				So(report.Matched, ShouldEqual, 2)
				So(report.PrimaryOnly, ShouldEqual, 1)
				So(report.SecondaryOnly, ShouldResemble, []string{"Old Song"})
				So(report.DuplicateKeys, ShouldBeEmpty)
			})

			Convey("And local ids should resolve to canonical ids", func() {
				id, ok := cat.Resolve(3)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, song.MustParseID(idA))
				_, ok = cat.Resolve(9)
				So(ok, ShouldBeFalse)
				So(cat.Linked(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given titles that differ only in case", t, func() {
		primary := []song.PrimaryRecord{primaryRec(idA, "Foo")}
		secondary := []song.SecondaryRecord{{LocalID: 1, Name: "foo"}}

		Convey("Then they should still match", func() {
			cat, report := song.Reconcile(primary, secondary)
			So(report.Matched, ShouldEqual, 1)
			So(cat.Linked(), ShouldEqual, 1)
		})
	})

	Convey("Given duplicate titles on both sides", t, func() {
		primary := []song.PrimaryRecord{
			primaryRec(idD, "Twin"),
			primaryRec(idB, "Twin"),
			primaryRec(idA, "Twin"),
		}
		secondary := []song.SecondaryRecord{
			{LocalID: 20, Name: "Twin"},
			{LocalID: 10, Name: "Twin"},
		}

		Convey("When reconciled", func() {
			cat, report := song.Reconcile(primary, secondary)

			Convey("Then they should pair positionally by id and local id order", func() {
				b, _ := cat.Lookup(song.MustParseID(idB))
				a, _ := cat.Lookup(song.MustParseID(idA))
				d, _ := cat.Lookup(song.MustParseID(idD))
				So(b.LocalID, ShouldEqual, song.LocalID(10))
				So(a.LocalID, ShouldEqual, song.LocalID(20))
				So(d.Linked, ShouldBeFalse)
			})

			Convey("And the duplicate key should be reported once", func() {
				So(report.DuplicateKeys, ShouldResemble, []string{"twin"})
				So(report.Matched, ShouldEqual, 2)
				So(report.PrimaryOnly, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a secondary list that repeats a local id", t, func() {
		primary := []song.PrimaryRecord{primaryRec(idA, "Alpha"), primaryRec(idB, "Beta")}
		secondary := []song.SecondaryRecord{{LocalID: 5, Name: "Alpha"}, {LocalID: 5, Name: "Beta"}}

		Convey("Then the local id should be attached to one song only", func() {
			cat, report := song.Reconcile(primary, secondary)
			So(cat.Linked(), ShouldEqual, 1)
			So(report.SecondaryOnly, ShouldResemble, []string{"Beta"})
		})
	})

	Convey("Given a primary list that repeats an id", t, func() {
		primary := []song.PrimaryRecord{primaryRec(idA, "Foo"), primaryRec(idA, "Bar")}
		secondary := []song.SecondaryRecord{{LocalID: 7, Name: "foo"}, {LocalID: 8, Name: "bar"}}

		Convey("When reconciled", func() {
			cat, report := song.Reconcile(primary, secondary)

			Convey("Then only the first record with the id should be kept", func() {
				So(cat.Len(), ShouldEqual, 1)
				s, ok := cat.Lookup(song.MustParseID(idA))
				So(ok, ShouldBeTrue)
				So(s.Name, ShouldEqual, "Foo")
			})

			Convey("Then only one local id should resolve to it", func() {
				So(cat.Linked(), ShouldEqual, 1)
				So(report.Matched, ShouldEqual, 1)
				_, ok := cat.Resolve(8)
				So(ok, ShouldBeFalse)
				So(report.SecondaryOnly, ShouldResemble, []string{"bar"})
			})

			Convey("Then the repeated id should be reported", func() {
				So(report.DuplicateIDs, ShouldResemble, []song.ID{song.MustParseID(idA)})
			})
		})
	})

	Convey("Given an empty secondary list", t, func() {
		primary := []song.PrimaryRecord{primaryRec(idA, "Alpha"), primaryRec(idB, "Beta")}

		Convey("Then PrimaryOnly should produce only unlinked songs", func() {
			cat := song.PrimaryOnly(primary)
			So(cat.Len(), ShouldEqual, 2)
			So(cat.Linked(), ShouldEqual, 0)
			for _, s := range cat.Songs() {
				So(s.Linked, ShouldBeFalse)
			}
		})
	})
}

func TestReconcileByID(t *testing.T) {
	Convey("Given secondary records that carry the primary id", t, func() {
		primary := []song.PrimaryRecord{
			primaryRec(idA, "Renamed Upstream"),
			primaryRec(idB, "Beta"),
		}
		secondary := []song.SecondaryRecord{
			{LocalID: 1, Name: "Original Name", SharedID: song.MustParseID(idA), HasSharedID: true},
			{LocalID: 2, Name: "Beta again", SharedID: song.MustParseID(idA), HasSharedID: true},
			{LocalID: 3, Name: "Gone", SharedID: song.MustParseID(idD), HasSharedID: true},
		}

		Convey("When reconciled with the default strategy", func() {
			cat, report := song.Reconcile(primary, secondary)

			Convey("Then the id join should be used regardless of titles", func() {
				So(report.Strategy, ShouldEqual, song.StrategyID)
				a, _ := cat.Lookup(song.MustParseID(idA))
				So(a.LocalID, ShouldEqual, song.LocalID(1))
				So(a.Linked, ShouldBeTrue)
			})

			Convey("And the first claim should win", func() {
				So(report.SecondaryOnly, ShouldResemble, []string{"Beta again", "Gone"})
				So(report.Matched, ShouldEqual, 1)
				So(report.PrimaryOnly, ShouldEqual, 1)
			})
		})

		Convey("When one secondary record lacks the id", func() {
			secondary = append(secondary, song.SecondaryRecord{LocalID: 4, Name: "Beta"})
			_, report := song.Reconcile(primary, secondary)

			Convey("Then the title join should be used", func() {
				So(report.Strategy, ShouldEqual, song.StrategyTitle)
			})
		})

		Convey("When title matching is forced", func() {
			_, report := song.Reconcile(primary, secondary, song.WithStrategy(song.StrategyTitle))

			Convey("Then the titles should decide", func() {
				So(report.Strategy, ShouldEqual, song.StrategyTitle)
				So(report.Matched, ShouldEqual, 0)
			})
		})
	})

	Convey("Given strategy names", t, func() {
		So(song.StrategyAuto.String(), ShouldEqual, "auto")
		So(song.StrategyTitle.String(), ShouldEqual, "title")
		So(song.StrategyID.String(), ShouldEqual, "id")
		So(song.Strategy(9).String(), ShouldEqual, "unknown")
	})
}
