package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/hypetorch/internal/adapters/repository"
	service "github.com/okian/hypetorch/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a file store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		path := filepath.Join(t.TempDir(), "data", "hypetorch_latest_output.json")
		store, err := repository.NewFileStore(path)
		So(err, ShouldBeNil)

		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a document is uploaded", func() {
			_, err := svc.Upload(ctx, []byte(messiDoc))
			So(err, ShouldBeNil)

			Convey("Then a fresh service over the same file should see it", func() {
				reopened, err := repository.NewFileStore(path)
				So(err, ShouldBeNil)
				other := service.New(service.WithStore(reopened))
				So(other.Start(ctx), ShouldBeNil)
				defer other.Stop()

				names, err := other.ListEntities(ctx)
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"Lionel Messi"})

				lu, err := other.LastUpdated(ctx)
				So(err, ShouldBeNil)
				So(lu.LastUpdated, ShouldNotBeNil)
			})
		})

		Convey("When uploads and reads run concurrently", func() {
			const writers, rounds = 4, 20

			var wg sync.WaitGroup
			errs := make(chan error, writers*rounds*2)

			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for r := 0; r < rounds; r++ {
						name := fmt.Sprintf("Player %d", w)
						body := fmt.Sprintf(`{"hype_scores": {%q: %d}, "mention_counts": {%q: %d}}`, name, r, name, r)
						if _, err := svc.Upload(ctx, []byte(body)); err != nil {
							errs <- err
						}
					}
				}(w)
			}
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for r := 0; r < rounds; r++ {
						names, err := svc.ListEntities(ctx)
						if err != nil {
							errs <- err
							continue
						}
						// Every stored document names exactly one player.
						if len(names) > 1 {
							errs <- fmt.Errorf("observed mixed document: %v", names)
						}
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then no reader should see a partial or mixed document", func() {
				var collected []error
				for err := range errs {
					collected = append(collected, err)
				}
				So(collected, ShouldBeEmpty)

				names, err := svc.ListEntities(ctx)
				So(err, ShouldBeNil)
				So(names, ShouldHaveLength, 1)
				So(store.Path(), ShouldEqual, path)
			})
		})
	})
}
