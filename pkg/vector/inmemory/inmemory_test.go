package inmemory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vendorahq/vendora-ai/pkg/vector"
	"github.com/vendorahq/vendora-ai/pkg/vector/inmemory"
)

func TestInMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InMemory Index Suite")
}

var _ = Describe("Index", func() {
	var (
		ctx   context.Context
		index *inmemory.Index
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		index, err = inmemory.NewIndex(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(index.EnsureCollection(ctx, "items")).To(Succeed())
	})

	It("rejects a zero dimensionality", func() {
		_, err := inmemory.NewIndex(0)
		Expect(err).To(HaveOccurred())
	})

	Describe("Upsert and FetchVector", func() {
		It("stores and returns the vector", func() {
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 2, 3}, nil)).To(Succeed())

			vec, err := index.FetchVector(ctx, "items", vector.NumID(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 2, 3}))
		})

		It("replaces the stored point on repeated upserts", func() {
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 0, 0}, nil)).To(Succeed())
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{0, 1, 0}, nil)).To(Succeed())

			vec, err := index.FetchVector(ctx, "items", vector.NumID(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{0, 1, 0}))
		})

		It("copies vectors so later caller mutation cannot corrupt storage", func() {
			original := []float32{1, 0, 0}
			Expect(index.Upsert(ctx, "items", vector.NumID(1), original, nil)).To(Succeed())
			original[0] = 99

			vec, err := index.FetchVector(ctx, "items", vector.NumID(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec[0]).To(Equal(float32(1)))
		})

		It("copies payloads so mutating a search hit cannot corrupt storage", func() {
			payload := map[string]any{"name": "Widget"}
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 0, 0}, payload)).To(Succeed())
			payload["name"] = "caller-side change"

			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].Payload["name"]).To(Equal("Widget"))

			hits[0].Payload["name"] = "hit-side change"

			hits, err = index.Search(ctx, "items", []float32{1, 0, 0}, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits[0].Payload["name"]).To(Equal("Widget"))
		})

		It("returns ErrNotFound for absent points", func() {
			_, err := index.FetchVector(ctx, "items", vector.NumID(404))
			Expect(err).To(MatchError(vector.ErrNotFound))
		})

		It("rejects vectors of the wrong dimensionality", func() {
			err := index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 2}, nil)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("supports UUID point ids", func() {
			id := vector.UUIDID("3f1c9a2e-8a7b-4f0e-9d3c-111111111111")
			Expect(index.Upsert(ctx, "items", id, []float32{1, 0, 0}, nil)).To(Succeed())

			vec, err := index.FetchVector(ctx, "items", id)
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 0, 0}))
		})
	})

	Describe("Delete", func() {
		It("removes a point", func() {
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 0, 0}, nil)).To(Succeed())
			Expect(index.Delete(ctx, "items", vector.NumID(1))).To(Succeed())

			_, err := index.FetchVector(ctx, "items", vector.NumID(1))
			Expect(err).To(MatchError(vector.ErrNotFound))
		})

		It("tolerates deleting an absent point", func() {
			Expect(index.Delete(ctx, "items", vector.NumID(404))).To(Succeed())
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			Expect(index.Upsert(ctx, "items", vector.NumID(1), []float32{1, 0, 0}, map[string]any{"category": "a", "supplier_id": int64(10)})).To(Succeed())
			Expect(index.Upsert(ctx, "items", vector.NumID(2), []float32{0.9, 0.1, 0}, map[string]any{"category": "a", "supplier_id": int64(20)})).To(Succeed())
			Expect(index.Upsert(ctx, "items", vector.NumID(3), []float32{0, 0, 1}, map[string]any{"category": "b", "supplier_id": int64(10)})).To(Succeed())
		})

		It("orders hits by descending similarity", func() {
			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(3))
			Expect(hits[0].ID.Num()).To(Equal(uint64(1)))
			Expect(hits[1].ID.Num()).To(Equal(uint64(2)))
			Expect(hits[0].Score).To(BeNumerically(">=", hits[1].Score))
		})

		It("caps results at the limit", func() {
			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 2, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(2))
		})

		It("applies string equality filters", func() {
			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 10, vector.Filters{"category": "b"})
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID.Num()).To(Equal(uint64(3)))
		})

		It("applies integer filters across integer widths", func() {
			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 10, vector.Filters{"supplier_id": 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(2))
		})

		It("combines filters conjunctively", func() {
			hits, err := index.Search(ctx, "items", []float32{1, 0, 0}, 10, vector.Filters{"category": "a", "supplier_id": 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID.Num()).To(Equal(uint64(1)))
		})

		It("scores every candidate zero for a zero-norm query", func() {
			hits, err := index.Search(ctx, "items", []float32{0, 0, 0}, 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(3))
			for _, hit := range hits {
				Expect(hit.Score).To(Equal(float32(0)))
			}
		})

		It("searches an unknown collection without error", func() {
			hits, err := index.Search(ctx, "nowhere", []float32{1, 0, 0}, 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(BeEmpty())
		})

		It("rejects queries of the wrong dimensionality", func() {
			_, err := index.Search(ctx, "items", []float32{1, 0}, 10, nil)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})
})
