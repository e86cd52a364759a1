package nop_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vendorahq/vendora-ai/pkg/eventstream"
	"github.com/vendorahq/vendora-ai/pkg/eventstream/nop"
)

func TestNop(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Nop Publisher Suite")
}

var _ = Describe("Publisher", func() {
	It("accepts events without error", func() {
		p := nop.NewPublisher()
		err := p.PublishInteraction(context.Background(), &eventstream.InteractionTrackedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeInteractionTracked,
			UserID:        1,
			Action:        "VIEW",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
	})

	It("rejects a nil event", func() {
		p := nop.NewPublisher()
		err := p.PublishInteraction(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilEvent))
	})
})
