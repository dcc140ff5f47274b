package primary_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/ddrsync/internal/adapters/sources/primary"
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

const (
	idA = "6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q"
	idB = "0bq9qI9PoPIlQl89bDO60o9q8I1iIP66"
)

const catalogBody = `var ALL_SONG_DATA=[
{"song_id":"6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q","song_name":"CANDY♡","alternate_name":"CANDY/candy heart","romanized_name":"","searchable_name":"","version_num":12,"deleted":0,"ratings":[3,6,9,12,0,6,9,12,0],"lock_types":[0,0,0,0,0,0,0,0,0]},
{"song_id":"0bq9qI9PoPIlQl89bDO60o9q8I1iIP66","song_name":"PARANOiA","alternate_name":"","romanized_name":"","searchable_name":"","version_num":1,"deleted":1,"ratings":[4,8,11,14,17,8,11,14,17]},
{"song_id":"not-an-id","song_name":"Broken","ratings":[1,2,3,4,5,6,7,8,9]},
{"song_id":"ld6P1lbb0bPO9doqbbPOoPb8qoDo8id0","song_name":"Short","ratings":[1,2]}
];
`

func TestCatalog(t *testing.T) {
	Convey("Given a primary tracker serving the song data script", t, func() {
		body := catalogBody
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/js/songdata.js" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, body)
		}))
		defer srv.Close()

		c := primary.New(primary.WithBaseURL(srv.URL), primary.WithRateLimit(0))

		Convey("When the catalog is fetched", func() {
			recs, err := c.Catalog(context.Background())

			Convey("Then valid entries should be decoded and bad ones skipped", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)

				candy := recs[0]
				So(candy.ID, ShouldEqual, song.MustParseID(idA))
				So(candy.Name, ShouldEqual, "CANDY♡")
				So(candy.AlternateName, ShouldEqual, "CANDY/candy heart")
				So(candy.Version, ShouldEqual, 12)
				So(candy.Deleted, ShouldBeFalse)
				So(candy.Ratings[song.ESP], ShouldEqual, 12)
				So(candy.Ratings.HasChallenge(), ShouldBeFalse)
				So(candy.Locks, ShouldNotBeNil)

				paranoia := recs[1]
				So(paranoia.ID, ShouldEqual, song.MustParseID(idB))
				So(paranoia.Deleted, ShouldBeTrue)
				So(paranoia.Locks, ShouldBeNil)
				So(paranoia.Ratings[song.CDP], ShouldEqual, 17)
			})
		})

		Convey("When the payload lacks the script prefix", func() {
			body = `[]`
			_, err := c.Catalog(context.Background())

			Convey("Then ErrUnexpectedPayload should be returned", func() {
				So(errors.Is(err, primary.ErrUnexpectedPayload), ShouldBeTrue)
			})
		})

		Convey("When the payload is not valid JSON", func() {
			body = `var ALL_SONG_DATA={oops};`
			_, err := c.Catalog(context.Background())

			Convey("Then ErrUnexpectedPayload should be returned", func() {
				So(errors.Is(err, primary.ErrUnexpectedPayload), ShouldBeTrue)
			})
		})
	})

	Convey("Given a primary tracker that is down", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := primary.New(primary.WithBaseURL(srv.URL)).Catalog(context.Background())

		Convey("Then ErrStatus should be returned", func() {
			So(errors.Is(err, primary.ErrStatus), ShouldBeTrue)
		})
	})
}

func TestScores(t *testing.T) {
	Convey("Given a primary tracker serving follow scores", t, func() {
		var gotUser, gotCT string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/follow_scores" {
				http.NotFound(w, r)
				return
			}
			gotCT = r.Header.Get("Content-Type")
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			gotUser = req["username"]
			_, _ = io.WriteString(w, `{"scores":[
				{"song_id":"6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q","SP_or_DP":0,"difficulty":2,"score":989350,"lamp":4,"time_played":1620500291},
				{"song_id":"6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q","SP_or_DP":0,"difficulty":2,"score":950000,"lamp":5,"time_played":1620400000},
				{"song_id":"6P18lOliIQqIO6Di0PP8iDlDQ01b0o0q","SP_or_DP":1,"difficulty":1,"score":900000,"lamp":1,"time_played":1620500000},
				{"song_id":"0bq9qI9PoPIlQl89bDO60o9q8I1iIP66","SP_or_DP":1,"difficulty":4,"score":800000,"lamp":0,"time_played":0},
				{"song_id":"0bq9qI9PoPIlQl89bDO60o9q8I1iIP66","SP_or_DP":1,"difficulty":0,"score":1,"lamp":0},
				{"song_id":"0bq9qI9PoPIlQl89bDO60o9q8I1iIP66","SP_or_DP":0,"difficulty":3,"score":1,"lamp":9},
				{"song_id":"bogus","SP_or_DP":0,"difficulty":3,"score":1,"lamp":1}
			]}`)
		}))
		defer srv.Close()

		c := primary.New(primary.WithBaseURL(srv.URL), primary.WithUserAgent("tester/1"))

		Convey("When a player's scores are fetched", func() {
			tables, err := c.Scores(context.Background(), "alice")

			Convey("Then the request should carry the username", func() {
				So(err, ShouldBeNil)
				So(gotUser, ShouldEqual, "alice")
				So(gotCT, ShouldEqual, "application/json")
			})

			Convey("Then repeated charts should merge per field", func() {
				a := tables[song.MustParseID(idA)]
				dsp := a.Get(song.DSP)
				So(dsp.Score, ShouldEqual, 989350)
				So(dsp.Lamp, ShouldEqual, score.LampPerfectFullCombo)
				So(dsp.PlayedAt, ShouldEqual, 1620500291)
			})

			Convey("Then doubles should shift past the missing beginner chart", func() {
				a := tables[song.MustParseID(idA)]
				So(a.Get(song.BDP).Score, ShouldEqual, 900000)
				b := tables[song.MustParseID(idB)]
				So(b.Get(song.CDP).Score, ShouldEqual, 800000)
				So(b.Played(), ShouldEqual, 1)
			})

			Convey("Then bad entries should be skipped", func() {
				So(tables, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a primary tracker answering with garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}))
		defer srv.Close()

		_, err := primary.New(primary.WithBaseURL(srv.URL)).Scores(context.Background(), "alice")

		Convey("Then ErrUnexpectedPayload should be returned", func() {
			So(errors.Is(err, primary.ErrUnexpectedPayload), ShouldBeTrue)
		})
	})
}
