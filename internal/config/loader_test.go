package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/ddrsync/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("DDRSYNC_FETCH_WORKERS", "3")
			t.Setenv("DDRSYNC_JOB_QUEUE_SIZE", "64")
			t.Setenv("DDRSYNC_PRIMARY_BASE_URL", "http://primary.test")
			t.Setenv("DDRSYNC_REQUESTS_PER_SECOND", "1.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FetchWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.PrimaryBaseURL, convey.ShouldEqual, "http://primary.test")
				convey.So(cfg.RequestsPerSecond, convey.ShouldEqual, 1.5)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeTempFile(t, "ddrsync.yaml", `
fetch_workers: 6
log_format: json
search_fuzzy_threshold: 0.9
players:
  - name: alice
    primary_account: alice
    secondary_account: "51234"
  - name: bob
    primary_account: bob
`)
			t.Setenv("DDRSYNC_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file including the roster", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FetchWorkers, convey.ShouldEqual, 6)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.SearchFuzzyThreshold, convey.ShouldEqual, 0.9)
				convey.So(cfg.Players, convey.ShouldHaveLength, 2)
				convey.So(cfg.Players[0], convey.ShouldResemble, config.Player{
					Name: "alice", PrimaryAccount: "alice", SecondaryAccount: "51234",
				})
				convey.So(cfg.Players[1].SecondaryAccount, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeTempFile(t, "ddrsync.yaml", "fetch_workers: 6\njob_queue_size: 32\n")
			t.Setenv("DDRSYNC_CONFIG", path)
			t.Setenv("DDRSYNC_FETCH_WORKERS", "9")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FetchWorkers, convey.ShouldEqual, 9)
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When a file is passed explicitly", func() {
			t.Setenv("DDRSYNC_CONFIG", writeTempFile(t, "env.yaml", "fetch_workers: 6\n"))
			path := writeTempFile(t, "flag.yaml", "fetch_workers: 7\n")

			cfg, err := config.Load(ctx, config.WithFile(path))

			convey.Convey("Then it should win over DDRSYNC_CONFIG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FetchWorkers, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When a dotenv file is named", func() {
			path := writeTempFile(t, ".env", "DDRSYNC_USER_AGENT=tester/2\n")
			t.Setenv("DDRSYNC_ENV_FILE", path)
			t.Setenv("DDRSYNC_USER_AGENT", "")
			_ = os.Unsetenv("DDRSYNC_USER_AGENT")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.UserAgent, convey.ShouldEqual, "tester/2")
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			t.Setenv("DDRSYNC_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should be ignored", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			path := writeTempFile(t, "bad.yaml", "invalid: yaml: content: [")
			t.Setenv("DDRSYNC_CONFIG", path)

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv("DDRSYNC_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			t.Setenv("DDRSYNC_FETCH_WORKERS", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.Convey("Then it should return the context error", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// clearConfigEnvVars unsets every DDRSYNC_ variable for the duration of the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DDRSYNC_CONFIG", "DDRSYNC_ENV_FILE", "DDRSYNC_LOG_LEVEL", "DDRSYNC_LOG_FORMAT",
		"DDRSYNC_FETCH_WORKERS", "DDRSYNC_JOB_QUEUE_SIZE", "DDRSYNC_PRIMARY_BASE_URL",
		"DDRSYNC_SECONDARY_BASE_URL", "DDRSYNC_REQUESTS_PER_SECOND", "DDRSYNC_REQUEST_TIMEOUT_MS",
		"DDRSYNC_USER_AGENT", "DDRSYNC_SEARCH_FUZZY_THRESHOLD",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
