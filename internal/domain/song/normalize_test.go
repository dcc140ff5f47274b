package song_test

import (
	"testing"

	"github.com/okian/ddrsync/internal/domain/song"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizer(t *testing.T) {
	Convey("Given a normalizer", t, func() {
		n := song.NewNormalizer()

		Convey("Then source spelling variants should normalize equally", func() {
			pairs := [][2]string{
				{"I！O", "I!O"},
				{"Possession (EDP Mix)", "Possession(EDP Mix)"},
				{"Possession（EDP Mix）", "Possession (EDP Mix)"},
				{"over the “period”", `over the "period"`},
				{"dreamin’", "dreamin'"},
				{"Qipchāq", "Qipchãq"},
				{"LOVE ＋ PEACE", "LOVE+PEACE"},
				{"Wait…", "Wait..."},
			}
			for _, p := range pairs {
				So(n.Normalize(p[0]), ShouldEqual, n.Normalize(p[1]))
			}
		})

		Convey("Then full-width letters should fold and the ellipsis expand", func() {
			So(n.Normalize("Ａ…Ｂ"), ShouldEqual, "A...B")
			So(n.Normalize("ＡＢＣ　１２３"), ShouldEqual, "ABC123")
		})

		Convey("Then Normalize should preserve case", func() {
			So(n.Normalize("Foo Bar"), ShouldEqual, "FooBar")
		})

		Convey("Then MatchKey should ignore case", func() {
			So(n.MatchKey("Foo"), ShouldEqual, n.MatchKey("foo"))
			So(n.MatchKey("ＦＯＯ bar"), ShouldEqual, n.MatchKey("fooBAR"))
		})

		Convey("Then normalizing twice should change nothing", func() {
			for _, s := range []string{"Ａ…Ｂ", "I！O", "Qipchāq", "  spaced  out "} {
				once := n.Normalize(s)
				So(n.Normalize(once), ShouldEqual, once)
			}
		})
	})
}
