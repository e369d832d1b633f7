package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lantern-care/lantern/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a new in-memory queue", t, func() {
		ctx := context.Background()

		Convey("When enqueuing jobs for distinct persons", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			okA := q.Enqueue(ctx, queue.Job{PersonID: "a", TriggeredBy: "signal"})
			okB := q.Enqueue(ctx, queue.Job{PersonID: "b", TriggeredBy: "signal"})

			Convey("Then both jobs should be queued", func() {
				So(okA, ShouldBeTrue)
				So(okB, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When enqueuing twice for the same person", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			first := q.Enqueue(ctx, queue.Job{PersonID: "a"})
			second := q.Enqueue(ctx, queue.Job{PersonID: "a"})

			Convey("Then the second enqueue should coalesce into the first", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When a person's job has been dequeued", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			q.Enqueue(ctx, queue.Job{PersonID: "a"})
			job := <-q.Dequeue(ctx)

			Convey("Then the person should be eligible for a fresh job", func() {
				So(job.PersonID, ShouldEqual, "a")
				So(q.Enqueue(ctx, queue.Job{PersonID: "a"}), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue reaches capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			defer q.Close()

			for i := 0; i < 2; i++ {
				So(q.Enqueue(ctx, queue.Job{PersonID: fmt.Sprintf("p-%d", i)}), ShouldBeTrue)
			}
			overflow := q.Enqueue(ctx, queue.Job{PersonID: "p-overflow"})

			Convey("Then further enqueues should be rejected", func() {
				So(overflow, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then a pending person still coalesces despite the full queue", func() {
				So(q.Enqueue(ctx, queue.Job{PersonID: "p-0"}), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue()
			q.Enqueue(ctx, queue.Job{PersonID: "a"})
			So(q.Close(), ShouldBeNil)

			Convey("Then new enqueues should be rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Job{PersonID: "b"}), ShouldBeFalse)
			})

			Convey("Then buffered jobs should drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				job, open := <-ch
				So(open, ShouldBeTrue)
				So(job.PersonID, ShouldEqual, "a")

				select {
				case _, open := <-ch:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel never closed")
				}
			})

			Convey("Then closing again should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When an enqueued job carries no timestamp", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			q.Enqueue(ctx, queue.Job{PersonID: "a"})
			job := <-q.Dequeue(ctx)

			Convey("Then the queue should stamp the enqueue time", func() {
				So(job.Enqueued.IsZero(), ShouldBeFalse)
			})
		})
	})
}
