package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/assistant"
	"github.com/vendorahq/vendora-ai/pkg/eventstream/nop"
	"github.com/vendorahq/vendora-ai/pkg/ingest"
	"github.com/vendorahq/vendora-ai/pkg/recommend"
	testutils "github.com/vendorahq/vendora-ai/pkg/utils/test"
	"github.com/vendorahq/vendora-ai/pkg/vector"
	"github.com/vendorahq/vendora-ai/pkg/vector/inmemory"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

const (
	productsColl = "product_catalog"
	knowledgeCol = "knowledge_base"
	usersColl    = "user_vectors"
	testDims     = 3
)

func newTestServer() (*Server, *inmemory.Index) {
	logger := zap.NewNop()
	index, err := inmemory.NewIndex(testDims)
	Expect(err).NotTo(HaveOccurred())

	ctx := context.Background()
	for _, coll := range []string{productsColl, knowledgeCol, usersColl} {
		Expect(index.EnsureCollection(ctx, coll)).To(Succeed())
	}

	embedder := testutils.NewMockEmbedder(testDims)

	svc := assistant.NewService(embedder, index, nil, nil, assistant.Config{
		ProductsCollection:  productsColl,
		KnowledgeCollection: knowledgeCol,
	}, logger)

	engine := recommend.NewEngine(index, nop.NewPublisher(), recommend.Config{
		ProductsCollection: productsColl,
		UsersCollection:    usersColl,
		Dimensions:         testDims,
		Decay:              0.95,
		ViewWeight:         1,
		CartWeight:         2,
		OrderWeight:        5,
		UpdateScale:        0.05,
		NeutralScore:       0.5,
	}, logger)

	ingester := ingest.NewService(embedder, index, ingest.Config{
		ProductsCollection:  productsColl,
		KnowledgeCollection: knowledgeCol,
	}, logger)

	return NewServer(Config{ListenAddr: ":0"}, svc, engine, ingester, logger), index
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(resp *http.Response, out any) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(raw, out)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		server *Server
		index  *inmemory.Index
	)

	seedProduct := func(id uint64, vec []float32, name, sku string) {
		err := index.Upsert(context.Background(), productsColl, vector.NumID(id), vec, map[string]any{
			"product_id": int64(id),
			"name":       name,
			"sku":        sku,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		server, index = newTestServer()
	})

	Describe("GET /health", func() {
		It("returns ok", func() {
			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /ai/chat/classify", func() {
		It("returns the intent classification", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/chat/classify", ChatClassifyRequest{
				Message: "what is the import tax on laptops?",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var intent assistant.QueryIntent
			decodeBody(resp, &intent)
			Expect(intent.Intents).To(ContainElement("tax_question"))
		})

		It("rejects an empty message", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/chat/classify", ChatClassifyRequest{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /ai/chat/generate", func() {
		It("answers with retrieved products", func() {
			seedProduct(1, []float32{1, 0, 0}, "Laptop Pro", "SKU-1")

			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/chat/generate", ChatGenerateRequest{
				Message: "find me a laptop",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var answer assistant.Answer
			decodeBody(resp, &answer)
			Expect(answer.Response).To(ContainSubstring("Laptop Pro"))
			Expect(answer.Intents).To(ContainElement("product_search"))
		})

		It("rejects an empty message", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/chat/generate", ChatGenerateRequest{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /ai/recommend/analytics/track", func() {
		It("tracks an interaction", func() {
			seedProduct(42, []float32{1, 0, 0}, "Laptop", "SKU-42")

			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/recommend/analytics/track", TrackInteractionRequest{
				UserID:    7,
				ProductID: 42,
				Action:    "ORDER",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			vec, err := index.FetchVector(context.Background(), usersColl, vector.NumID(7))
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 0, 0}))
		})

		It("rejects a request with no item identifier", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/recommend/analytics/track", TrackInteractionRequest{
				UserID: 7,
				Action: "VIEW",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a missing user id", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/recommend/analytics/track", TrackInteractionRequest{
				ProductID: 42,
				Action:    "VIEW",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /ai/recommend/user/:id", func() {
		It("returns neutral-scored defaults for unknown users", func() {
			seedProduct(1, []float32{1, 0, 0}, "Laptop", "SKU-1")

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ai/recommend/user/999", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body RecommendationsResponse
			decodeBody(resp, &body)
			Expect(body.Recommendations).To(HaveLen(1))
			Expect(body.Recommendations[0].Score).To(Equal(float32(0.5)))
		})

		It("rejects a non-numeric id", func() {
			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ai/recommend/user/abc", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("clamps the limit parameter", func() {
			for i := uint64(1); i <= 3; i++ {
				seedProduct(i, []float32{1, 0, 0}, "P", "S")
			}

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ai/recommend/user/999?limit=2", nil))
			Expect(err).NotTo(HaveOccurred())

			var body RecommendationsResponse
			decodeBody(resp, &body)
			Expect(body.Recommendations).To(HaveLen(2))
		})
	})

	Describe("GET /ai/recommend/similar/:id", func() {
		It("returns similar products excluding the query product", func() {
			seedProduct(1, []float32{1, 0, 0}, "Laptop", "SKU-1")
			seedProduct(2, []float32{0.9, 0.1, 0}, "Laptop Stand", "SKU-2")

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ai/recommend/similar/1", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body RecommendationsResponse
			decodeBody(resp, &body)
			Expect(body.Recommendations).To(HaveLen(1))
			Expect(body.Recommendations[0].ProductID).To(Equal(uint64(2)))
		})
	})

	Describe("GET /ai/recommend/homepage/:id", func() {
		It("returns recommendations for a fresh user", func() {
			seedProduct(1, []float32{1, 0, 0}, "Laptop", "SKU-1")

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ai/recommend/homepage/5", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body RecommendationsResponse
			decodeBody(resp, &body)
			Expect(body.Recommendations).NotTo(BeEmpty())
		})
	})

	Describe("ingest endpoints", func() {
		It("ingests a product", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/ingest/product", ingest.Product{
				ProductID: 1,
				SKU:       "SKU-1",
				Name:      "Laptop",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			_, err = index.FetchVector(context.Background(), productsColl, vector.NumID(1))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a product without an id", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/ingest/product", ingest.Product{Name: "x"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("bulk ingests products and reports counts", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/ingest/products/bulk", BulkIngestRequest{
				Products: []ingest.Product{
					{ProductID: 1, Name: "A"},
					{ProductID: 2, Name: "B"},
				},
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body BulkIngestResponse
			decodeBody(resp, &body)
			Expect(body.Ingested).To(Equal(2))
			Expect(body.Total).To(Equal(2))
		})

		It("ingests a document and returns its id", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/ingest/document", ingest.Document{
				DocType: "tax",
				Title:   "Vietnam Import Tax",
				Text:    "Import duties are 10%.",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body IngestDocumentResponse
			decodeBody(resp, &body)
			Expect(body.ID).NotTo(BeEmpty())
		})

		It("rejects a document without text", func() {
			resp, err := server.App().Test(jsonRequest(http.MethodPost, "/ai/ingest/document", ingest.Document{DocType: "tax"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("deletes a product", func() {
			seedProduct(1, []float32{1, 0, 0}, "Laptop", "SKU-1")

			resp, err := server.App().Test(httptest.NewRequest(http.MethodDelete, "/ai/ingest/product/1", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			_, err = index.FetchVector(context.Background(), productsColl, vector.NumID(1))
			Expect(err).To(MatchError(vector.ErrNotFound))
		})
	})
})
