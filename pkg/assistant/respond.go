package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/llm"
	"github.com/vendorahq/vendora-ai/pkg/utils"
	"github.com/vendorahq/vendora-ai/pkg/vector"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserContext describes the requesting user for tone and personalization.
type UserContext struct {
	UserID      uint64 `json:"user_id"`
	UserType    string `json:"user_type"` // "retailer" or "supplier"
	Name        string `json:"name,omitempty"`
	LoyaltyTier string `json:"loyalty_tier,omitempty"` // retailers only
}

const (
	defaultHistoryLimit = 10

	descriptionPreviewLen = 200
	documentPreviewLen    = 400
	fallbackPreviewLen    = 200

	noInformationMessage = "I apologize, but I couldn't find relevant information for your query. " +
		"Please try rephrasing your question or contact our support team for assistance."
)

// Generator renders a fused retrieval context into a final answer. With a
// configured text-generation call it prompts the model; on any failure, or
// with no call configured, it composes the answer deterministically from the
// context sections. It always produces some answer.
type Generator struct {
	generate     llm.CallFunc
	historyLimit int
	logger       *zap.Logger
}

// NewGenerator creates a Generator. generate may be nil; historyLimit <= 0
// uses the default.
func NewGenerator(generate llm.CallFunc, historyLimit int, logger *zap.Logger) *Generator {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Generator{
		generate:     generate,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Generate returns the answer text for a query given its retrieval context.
func (g *Generator) Generate(ctx context.Context, query string, rc Context, history []Message, profile *UserContext, intent QueryIntent) string {
	if g.generate == nil {
		return composeFallback(rc)
	}

	prompt := g.buildPrompt(query, rc, history, profile, intent)
	response, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("generation failed, composing deterministic answer", zap.Error(err))
		return composeFallback(rc)
	}
	return response
}

func (g *Generator) buildPrompt(query string, rc Context, history []Message, profile *UserContext, intent QueryIntent) string {
	var b strings.Builder

	b.WriteString(buildSystemPrompt(profile))
	b.WriteString("\n\nUser's query involves: ")
	b.WriteString(strings.Join(intent.Intents, ", "))

	b.WriteString("\n\n### Retrieved Context:\n")
	b.WriteString(formatContext(rc))

	b.WriteString("\n\n### Conversation History:\n")
	start := len(history) - g.historyLimit
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}

	b.WriteString("\n### Current Question:\nUser: ")
	b.WriteString(query)

	b.WriteString(`

### Instructions:
1. Answer based on the retrieved context above
2. If multiple topics are covered (e.g., products AND taxes), address each clearly
3. If context is insufficient, acknowledge what you don't know
4. Be concise but thorough
5. For products, mention key details (name, SKU, supplier)
6. For tax/legal questions, cite the source document if available

### Response:`)

	return b.String()
}

func buildSystemPrompt(profile *UserContext) string {
	base := `You are a helpful AI assistant for Vendora, a B2B e-commerce marketplace platform.
You help retailers and suppliers with:
- Finding products from various suppliers
- Understanding tax regulations, import/export duties
- Contract templates and legal documents
- Platform usage and features

Be professional, accurate, and helpful. Cite sources when available.`

	if profile == nil {
		return base
	}

	switch {
	case profile.UserType == "retailer" && profile.LoyaltyTier != "":
		base += fmt.Sprintf("\n\nYou are speaking with a %s tier retailer", profile.LoyaltyTier)
		if profile.Name != "" {
			base += fmt.Sprintf(" (%s)", profile.Name)
		}
		base += ". Provide personalized service appropriate to their tier level."
	case profile.UserType == "supplier":
		base += "\n\nYou are speaking with a supplier"
		if profile.Name != "" {
			base += fmt.Sprintf(" (%s)", profile.Name)
		}
		base += ". Help them manage their products and understand marketplace policies."
	}

	return base
}

// formatContext serializes retrieval results into prompt-friendly sections.
func formatContext(rc Context) string {
	var sections []string

	if products := rc[SourceProducts]; len(products) > 0 {
		var b strings.Builder
		b.WriteString("### Products Found:\n")
		for _, p := range products {
			desc := payloadString(p.Payload, "description")
			if desc == "" {
				desc = "No description"
			}
			fmt.Fprintf(&b, "- %s (SKU: %s): %s\n",
				payloadString(p.Payload, "name"),
				payloadString(p.Payload, "sku"),
				utils.Truncate(desc, descriptionPreviewLen),
			)
		}
		sections = append(sections, b.String())
	}

	if docs := rc[SourceTaxDocs]; len(docs) > 0 {
		sections = append(sections, formatDocSection("### Tax & Regulation Information:\n", docs, true))
	}

	if docs := rc[SourceContractDocs]; len(docs) > 0 {
		sections = append(sections, formatDocSection("### Contract & Legal Information:\n", docs, false))
	}

	if docs := rc[SourceGuides]; len(docs) > 0 {
		sections = append(sections, formatDocSection("### Platform Guides:\n", docs, false))
	}

	if suppliers := rc[SourceSuppliers]; len(suppliers) > 0 {
		var b strings.Builder
		b.WriteString("### Supplier Information:\n")
		seen := make(map[int64]bool)
		for _, p := range suppliers {
			sid, ok := payloadInt(p.Payload, "supplier_id")
			if !ok || seen[sid] {
				continue
			}
			fmt.Fprintf(&b, "- Supplier %d sells: %s\n", sid, payloadString(p.Payload, "name"))
			seen[sid] = true
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return "No specific context available."
	}
	return strings.Join(sections, "\n")
}

func formatDocSection(header string, docs []vector.Hit, withRegion bool) string {
	var b strings.Builder
	b.WriteString(header)
	for _, d := range docs {
		title := payloadString(d.Payload, "title")
		if title == "" {
			title = "Document"
		}
		if withRegion {
			region := payloadString(d.Payload, "region")
			if region == "" {
				region = "Global"
			}
			fmt.Fprintf(&b, "[%s] (%s): %s\n\n", title, region, utils.Truncate(payloadString(d.Payload, "text"), documentPreviewLen))
		} else {
			fmt.Fprintf(&b, "[%s]: %s\n\n", title, utils.Truncate(payloadString(d.Payload, "text"), documentPreviewLen))
		}
	}
	return b.String()
}

// composeFallback deterministically concatenates the non-empty context
// sections. It needs no network access and is the sole path when no
// generation backend is configured.
func composeFallback(rc Context) string {
	var parts []string

	if products := rc[SourceProducts]; len(products) > 0 {
		lines := make([]string, 0, len(products))
		for _, p := range products {
			lines = append(lines, fmt.Sprintf("• %s (SKU: %s)",
				payloadString(p.Payload, "name"), payloadString(p.Payload, "sku")))
		}
		parts = append(parts, "**Products Found:**\n"+strings.Join(lines, "\n"))
	}

	fallbackDocSections := []struct {
		source string
		header string
	}{
		{SourceTaxDocs, "**Tax Information:**"},
		{SourceContractDocs, "**Contract Information:**"},
		{SourceGuides, "**Guides:**"},
	}
	for _, section := range fallbackDocSections {
		docs := rc[section.source]
		if len(docs) == 0 {
			continue
		}
		lines := make([]string, 0, len(docs))
		for _, d := range docs {
			title := payloadString(d.Payload, "title")
			if title == "" {
				title = "Document"
			}
			lines = append(lines, fmt.Sprintf("• %s: %s...",
				title, utils.Truncate(payloadString(d.Payload, "text"), fallbackPreviewLen)))
		}
		parts = append(parts, section.header+"\n"+strings.Join(lines, "\n"))
	}

	if suppliers := rc[SourceSuppliers]; len(suppliers) > 0 {
		seen := make(map[int64]bool)
		var lines []string
		for _, p := range suppliers {
			sid, ok := payloadInt(p.Payload, "supplier_id")
			if !ok || seen[sid] {
				continue
			}
			lines = append(lines, fmt.Sprintf("• Supplier %d: %s", sid, payloadString(p.Payload, "name")))
			seen[sid] = true
		}
		if len(lines) > 0 {
			parts = append(parts, "**Suppliers:**\n"+strings.Join(lines, "\n"))
		}
	}

	if len(parts) == 0 {
		return noInformationMessage
	}
	return strings.Join(parts, "\n\n")
}
