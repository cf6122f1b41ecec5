//go:build e2e

package e2e

import (
	"strings"
	"testing"
)

// TestKnowledgePipeline drives the full document lifecycle over HTTP against
// a real pgvector instance: register, ingest, link to a bot, and retrieve.
func TestKnowledgePipeline(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("DocumentLifecycle", func(t *testing.T) {
		kbID := env.CreateKnowledgeBase("lifecycle-kb")
		docID := env.CreateTextDocument(kbID, "handbook.txt",
			"Support hours are Monday through Friday, nine to five.")

		resp, err := env.Get("/documents/" + docID)
		if err != nil {
			t.Fatalf("failed to get document: %v", err)
		}
		if !strings.Contains(string(resp.Data), `"status":"pending"`) {
			t.Fatalf("expected pending document, got %s", resp.Data)
		}

		env.ProcessDocuments(docID)

		resp, err = env.Get("/documents/" + docID)
		if err != nil {
			t.Fatalf("failed to get document after processing: %v", err)
		}
		body := string(resp.Data)
		if !strings.Contains(body, `"status":"completed"`) {
			t.Fatalf("expected completed document, got %s", body)
		}
		if !strings.Contains(body, `"content_hash"`) {
			t.Fatalf("expected content hash to be set, got %s", body)
		}

		listResp, err := env.Get("/knowledge-bases/" + kbID + "/documents")
		if err != nil {
			t.Fatalf("failed to list documents: %v", err)
		}
		if !strings.Contains(string(listResp.Data), docID) {
			t.Fatalf("expected document %s in listing, got %s", docID, listResp.Data)
		}
	})

	t.Run("VectorRetrieval", func(t *testing.T) {
		kbID := env.CreateKnowledgeBase("retrieval-kb")
		returnsID := env.CreateTextDocument(kbID, "returns.txt",
			"Returns are accepted within 30 days of purchase with a receipt.")
		env.CreateTextDocument(kbID, "shipping.txt",
			"Standard shipping takes five business days across the country.")
		env.ProcessDocuments(returnsID)

		env.LinkBot("bot-retrieval", kbID)

		result := env.QueryContext("bot-retrieval",
			"returns are accepted within 30 days of purchase with a receipt")
		if !result.HasContext {
			t.Fatalf("expected context, got error %q", result.Error)
		}
		if !strings.Contains(result.Context, "[Source 1: returns.txt]") {
			t.Fatalf("expected returns.txt as first source, got %q", result.Context)
		}
		if !strings.Contains(result.Context, "30 days") {
			t.Fatalf("expected chunk content in context, got %q", result.Context)
		}
		if len(result.Sources) == 0 || result.Sources[0].DocumentName != "returns.txt" {
			t.Fatalf("expected returns.txt source, got %+v", result.Sources)
		}
	})

	t.Run("ExactBarcodeRetrieval", func(t *testing.T) {
		kbID := env.CreateKnowledgeBase("catalog-kb")
		docID := env.CreateTextDocument(kbID, "catalog.txt",
			"ROW: [Barcode: 8698686923236] [Name: Ceramic Mug] [Price: 49.90]")
		env.ProcessDocuments(docID)

		env.LinkBot("bot-catalog", kbID)

		// Numeric identifiers bypass embedding and match chunk content
		// directly, so an unrelated question still finds the product row.
		result := env.QueryContext("bot-catalog", "how much is 8698686923236")
		if !result.HasContext {
			t.Fatalf("expected exact match context, got error %q", result.Error)
		}
		if !strings.Contains(result.Context, "Ceramic Mug") {
			t.Fatalf("expected product row in context, got %q", result.Context)
		}
	})

	t.Run("BotWithoutKnowledgeBases", func(t *testing.T) {
		result := env.QueryContext("bot-unlinked", "what is the return policy")
		if result.HasContext {
			t.Fatalf("expected no context for unlinked bot, got %q", result.Context)
		}
	})

	t.Run("UnlinkKnowledgeBase", func(t *testing.T) {
		kbID := env.CreateKnowledgeBase("unlink-kb")
		env.LinkBot("bot-unlink", kbID)

		listResp, err := env.Get("/bots/bot-unlink/knowledge-bases")
		if err != nil {
			t.Fatalf("failed to list linked knowledge bases: %v", err)
		}
		if !strings.Contains(string(listResp.Data), kbID) {
			t.Fatalf("expected %s linked, got %s", kbID, listResp.Data)
		}

		if _, err := env.Delete("/bots/bot-unlink/knowledge-bases"); err != nil {
			t.Fatalf("failed to unlink: %v", err)
		}

		result := env.QueryContext("bot-unlink", "anything at all")
		if result.HasContext {
			t.Fatalf("expected no context after unlink, got %q", result.Context)
		}
	})
}
