package recommend_test

import (
	"context"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/eventstream"
	"github.com/vendorahq/vendora-ai/pkg/recommend"
	testutils "github.com/vendorahq/vendora-ai/pkg/utils/test"
	"github.com/vendorahq/vendora-ai/pkg/vector"
	"github.com/vendorahq/vendora-ai/pkg/vector/inmemory"
)

func TestRecommend(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Recommend Suite")
}

const (
	productsColl = "product_catalog"
	usersColl    = "user_vectors"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []*eventstream.InteractionTrackedEvent
}

func (r *recordingPublisher) PublishInteraction(_ context.Context, event *eventstream.InteractionTrackedEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error {
	return nil
}

func testConfig() recommend.Config {
	return recommend.Config{
		ProductsCollection: productsColl,
		UsersCollection:    usersColl,
		Dimensions:         2,
		Decay:              0.95,
		ViewWeight:         1,
		CartWeight:         2,
		OrderWeight:        5,
		UpdateScale:        0.05,
		NeutralScore:       0.5,
	}
}

var _ = Describe("Engine", func() {
	var (
		ctx       context.Context
		index     *inmemory.Index
		publisher *recordingPublisher
		engine    *recommend.Engine
	)

	seedProduct := func(id uint64, vec []float32, name, sku string) {
		err := index.Upsert(ctx, productsColl, vector.NumID(id), vec, map[string]any{
			"product_id": int64(id),
			"name":       name,
			"sku":        sku,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		index, err = inmemory.NewIndex(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(index.EnsureCollection(ctx, productsColl)).To(Succeed())
		Expect(index.EnsureCollection(ctx, usersColl)).To(Succeed())

		publisher = &recordingPublisher{}
		engine = recommend.NewEngine(index, publisher, testConfig(), zap.NewNop())

		seedProduct(42, []float32{1, 0}, "Laptop", "SKU-42")
		seedProduct(7, []float32{0, 1}, "Desk", "SKU-7")
	})

	Describe("TrackInteraction", func() {
		It("initializes the preference vector to the item vector on first contact", func() {
			err := engine.TrackInteraction(ctx, recommend.Interaction{
				UserID:    7,
				ProductID: 42,
				Action:    recommend.ActionOrder,
			})
			Expect(err).NotTo(HaveOccurred())

			vec, err := index.FetchVector(ctx, usersColl, vector.NumID(7))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 0}))
		})

		It("blends subsequent interactions with decay and renormalizes", func() {
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 7, Action: recommend.ActionView,
			})).To(Succeed())

			vec, err := index.FetchVector(ctx, usersColl, vector.NumID(7))
			Expect(err).NotTo(HaveOccurred())

			// v = normalize([1*0.95, 1*(1-0.95)*1*0.05])
			norm := math.Sqrt(float64(vec[0])*float64(vec[0]) + float64(vec[1])*float64(vec[1]))
			Expect(norm).To(BeNumerically("~", 1.0, 1e-5))
			Expect(float64(vec[1])/float64(vec[0])).To(BeNumerically("~", 0.0025/0.95, 1e-5))
		})

		It("weights an order more heavily than a view", func() {
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 1, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 2, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())

			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 1, ProductID: 7, Action: recommend.ActionView,
			})).To(Succeed())
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 2, ProductID: 7, Action: recommend.ActionOrder,
			})).To(Succeed())

			viewVec, err := index.FetchVector(ctx, usersColl, vector.NumID(1))
			Expect(err).NotTo(HaveOccurred())
			orderVec, err := index.FetchVector(ctx, usersColl, vector.NumID(2))
			Expect(err).NotTo(HaveOccurred())

			Expect(orderVec[1]).To(BeNumerically(">", viewVec[1]))
		})

		It("resolves the item through its SKU when no product id is given", func() {
			err := engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 9,
				SKU:    "SKU-42",
				Action: recommend.ActionView,
			})
			Expect(err).NotTo(HaveOccurred())

			vec, err := index.FetchVector(ctx, usersColl, vector.NumID(9))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 0}))
		})

		It("drops events for unresolvable items without error", func() {
			err := engine.TrackInteraction(ctx, recommend.Interaction{
				UserID:    9,
				ProductID: 999,
				Action:    recommend.ActionView,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = index.FetchVector(ctx, usersColl, vector.NumID(9))
			Expect(err).To(MatchError(vector.ErrNotFound))
			Expect(publisher.events).To(BeEmpty())
		})

		It("drops events when the resolver itself fails", func() {
			flaky := &testutils.FlakyIndex{Index: index, FailFetch: true}
			flakyEngine := recommend.NewEngine(flaky, publisher, testConfig(), zap.NewNop())

			err := flakyEngine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 9, ProductID: 42, Action: recommend.ActionView,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails when the updated vector cannot be persisted", func() {
			flaky := &testutils.FlakyIndex{Index: index, FailUpsert: true}
			flakyEngine := recommend.NewEngine(flaky, publisher, testConfig(), zap.NewNop())

			err := flakyEngine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 9, ProductID: 42, Action: recommend.ActionView,
			})
			Expect(err).To(HaveOccurred())
			Expect(publisher.events).To(BeEmpty())
		})

		It("publishes an event after the vector is persisted", func() {
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())

			Expect(publisher.events).To(HaveLen(1))
			event := publisher.events[0]
			Expect(event.EventType).To(Equal(eventstream.EventTypeInteractionTracked))
			Expect(event.EventID).NotTo(BeEmpty())
			Expect(event.UserID).To(Equal(uint64(7)))
			Expect(event.ProductID).To(Equal(uint64(42)))
			Expect(event.Action).To(Equal("ORDER"))
			Expect(event.ColdStart).To(BeTrue())
		})

		It("works without a publisher", func() {
			quiet := recommend.NewEngine(index, nil, testConfig(), zap.NewNop())
			Expect(quiet.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())
		})
	})

	Describe("RecommendForUser", func() {
		It("ranks products by similarity to the preference vector", func() {
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())

			recs, err := engine.RecommendForUser(ctx, 7, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].ProductID).To(Equal(uint64(42)))
			Expect(recs[0].SKU).To(Equal("SKU-42"))
			Expect(recs[0].Score).To(BeNumerically(">", recs[1].Score))
		})

		It("matches the default ranking exactly for unknown users", func() {
			recs, err := engine.RecommendForUser(ctx, 12345, 10)
			Expect(err).NotTo(HaveOccurred())

			defaults, err := engine.DefaultRecommendations(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(Equal(defaults))
		})
	})

	Describe("DefaultRecommendations", func() {
		It("reports the fixed neutral score", func() {
			recs, err := engine.DefaultRecommendations(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(2))
			for _, rec := range recs {
				Expect(rec.Score).To(Equal(float32(0.5)))
			}
		})
	})

	Describe("SimilarItems", func() {
		BeforeEach(func() {
			seedProduct(43, []float32{0.9, 0.1}, "Laptop Stand", "SKU-43")
		})

		It("never includes the query product", func() {
			recs, err := engine.SimilarItems(ctx, 42, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(2))
			for _, rec := range recs {
				Expect(rec.ProductID).NotTo(Equal(uint64(42)))
			}
			Expect(recs[0].ProductID).To(Equal(uint64(43)))
		})

		It("returns empty for unknown products", func() {
			recs, err := engine.SimilarItems(ctx, 999, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})

		It("returns empty for a non-positive limit", func() {
			recs, err := engine.SimilarItems(ctx, 42, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})
	})

	Describe("HomepageRecommendations", func() {
		It("pads the personalized ranking with defaults, deduplicated", func() {
			Expect(engine.TrackInteraction(ctx, recommend.Interaction{
				UserID: 7, ProductID: 42, Action: recommend.ActionOrder,
			})).To(Succeed())

			recs, err := engine.HomepageRecommendations(ctx, 7, 10)
			Expect(err).NotTo(HaveOccurred())

			seen := make(map[uint64]int)
			for _, rec := range recs {
				seen[rec.ProductID]++
			}
			for id, count := range seen {
				Expect(count).To(Equal(1), "product %d appeared %d times", id, count)
			}
			Expect(recs[0].ProductID).To(Equal(uint64(42)))
		})

		It("respects the limit", func() {
			recs, err := engine.HomepageRecommendations(ctx, 12345, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
		})
	})
})
