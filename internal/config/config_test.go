package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/ddrsync/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.FetchWorkers, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.JobQueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.SearchFuzzyThreshold, convey.ShouldEqual, 0.85)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()
		cfg.Players = []config.Player{
			{Name: "alice", PrimaryAccount: "alice"},
			{Name: "bob", SecondaryAccount: "51234"},
		}
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		cases := map[string]func(*config.Config){
			"empty primary url":    func(c *config.Config) { c.PrimaryBaseURL = " " },
			"empty secondary url":  func(c *config.Config) { c.SecondaryBaseURL = "" },
			"zero workers":         func(c *config.Config) { c.FetchWorkers = 0 },
			"zero queue size":      func(c *config.Config) { c.JobQueueSize = 0 },
			"negative rate":        func(c *config.Config) { c.RequestsPerSecond = -1 },
			"negative timeout":     func(c *config.Config) { c.RequestTimeoutMS = -1 },
			"threshold above one":  func(c *config.Config) { c.SearchFuzzyThreshold = 1.5 },
			"unnamed player":       func(c *config.Config) { c.Players[0].Name = "" },
			"duplicate player":     func(c *config.Config) { c.Players[1].Name = "alice" },
			"player with no login": func(c *config.Config) { c.Players[1].SecondaryAccount = "" },
		}

		for name, mutate := range cases {
			convey.Convey("When it has "+name, func() {
				mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When a player is looked up", func() {
			p, ok := cfg.Player("bob")
			_, missing := cfg.Player("carol")

			convey.Convey("Then the roster entry should be returned", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(p.SecondaryAccount, convey.ShouldEqual, "51234")
				convey.So(missing, convey.ShouldBeFalse)
			})
		})
	})
}
