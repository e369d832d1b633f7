package main

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"

	"github.com/lantern-care/lantern/internal/adapters/http/api"
	app "github.com/lantern-care/lantern/internal/app"
	"github.com/lantern-care/lantern/internal/config"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LANTERN_ADDR", ":8080")
			_ = os.Setenv("LANTERN_QUEUE_SIZE", "1000")
			_ = os.Setenv("LANTERN_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("LANTERN_ADDR")
				_ = os.Unsetenv("LANTERN_QUEUE_SIZE")
				_ = os.Unsetenv("LANTERN_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithBaselineWindow(21, 10),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New(app.WithDataDir(t.TempDir()))

			convey.Convey("Then routes should register without starting the service", func() {
				router := chi.NewRouter()
				apiServer := api.NewServer(svc, svc)
				convey.So(func() { apiServer.Register(router) }, convey.ShouldNotPanic)

				srv := &http.Server{
					Addr:              ":0",
					Handler:           router,
					ReadTimeout:       readTimeout,
					WriteTimeout:      writeTimeout,
					IdleTimeout:       idleTimeout,
					ReadHeaderTimeout: readHeaderTimeout,
				}
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(srv.Handler, convey.ShouldNotBeNil)
			})
		})
	})
}
