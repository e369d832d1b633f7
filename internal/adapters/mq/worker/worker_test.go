package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lantern-care/lantern/internal/adapters/mq/queue"
	"github.com/lantern-care/lantern/internal/adapters/mq/worker"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeAssessor struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
	seen    chan string
}

func newFakeAssessor() *fakeAssessor {
	return &fakeAssessor{
		failFor: make(map[string]error),
		seen:    make(chan string, 64),
	}
}

func (f *fakeAssessor) Assess(ctx context.Context, personID, trigger string) error {
	f.mu.Lock()
	f.calls = append(f.calls, personID)
	err := f.failFor[personID]
	f.mu.Unlock()
	f.seen <- personID
	return err
}

func (f *fakeAssessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker wired to a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		assessor := newFakeAssessor()
		w := worker.NewInMemoryWorker(q, assessor, worker.WithName("test-worker"))

		Convey("When a job is enqueued", func() {
			go w.Run(ctx)
			So(q.Enqueue(ctx, queue.Job{PersonID: "p-1", TriggeredBy: "signal"}), ShouldBeTrue)
			waitFor(t, assessor.seen, "p-1")

			Convey("Then the assessor should receive it", func() {
				So(assessor.callCount(), ShouldEqual, 1)
			})

			q.Close()
		})

		Convey("When the assessor fails for one person", func() {
			assessor.failFor["bad"] = errors.New("compose failed")
			go w.Run(ctx)

			So(q.Enqueue(ctx, queue.Job{PersonID: "bad"}), ShouldBeTrue)
			waitFor(t, assessor.seen, "bad")
			So(q.Enqueue(ctx, queue.Job{PersonID: "good"}), ShouldBeTrue)
			waitFor(t, assessor.seen, "good")

			Convey("Then the worker should keep processing later jobs", func() {
				So(assessor.callCount(), ShouldEqual, 2)
			})

			q.Close()
		})

		Convey("When the queue closes", func() {
			go w.Run(ctx)
			q.Close()

			Convey("Then shutdown should complete promptly", func() {
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancelShutdown()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers sharing one queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		assessor := newFakeAssessor()
		pool := worker.NewPool(3, q, assessor)

		Convey("When jobs for several persons arrive", func() {
			pool.Start(ctx)

			persons := []string{"a", "b", "c", "d", "e"}
			for _, p := range persons {
				So(q.Enqueue(ctx, queue.Job{PersonID: p, TriggeredBy: "signal"}), ShouldBeTrue)
			}

			received := make(map[string]bool)
			deadline := time.After(2 * time.Second)
			for len(received) < len(persons) {
				select {
				case p := <-assessor.seen:
					received[p] = true
				case <-deadline:
					t.Fatal("timed out waiting for pool to drain jobs")
				}
			}

			Convey("Then every person should be assessed exactly once", func() {
				So(assessor.callCount(), ShouldEqual, len(persons))
			})

			Convey("And shutdown should close the queue and stop the workers", func() {
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelShutdown()
				So(pool.Shutdown(shutdownCtx), ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
