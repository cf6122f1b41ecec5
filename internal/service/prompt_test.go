package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRAGPrompt_WithContext(t *testing.T) {
	prompt := BuildRAGPrompt("You are a sales assistant for Acme.", "[Source 1: products.csv]\nROW: [Barcode: 8698686923236] [Price: 12.50]")

	assert.True(t, strings.HasPrefix(prompt, "You are a sales assistant for Acme."))
	assert.Contains(t, prompt, "=== KNOWLEDGE BASE CONTENT ===")
	assert.Contains(t, prompt, "=== END KNOWLEDGE BASE ===")
	assert.Contains(t, prompt, "[Barcode: 8698686923236]")
	assert.Contains(t, prompt, "NEVER invent prices")

	start := strings.Index(prompt, "=== KNOWLEDGE BASE CONTENT ===")
	end := strings.Index(prompt, "=== END KNOWLEDGE BASE ===")
	assert.Less(t, start, end)
}

func TestBuildRAGPrompt_WithoutContext(t *testing.T) {
	prompt := BuildRAGPrompt("You are a sales assistant for Acme.", "")

	assert.True(t, strings.HasPrefix(prompt, "You are a sales assistant for Acme."))
	assert.NotContains(t, prompt, "=== KNOWLEDGE BASE CONTENT ===")
	assert.Contains(t, prompt, "No knowledge base is attached")
	assert.Contains(t, prompt, "I don't have access to that information right now.")
}

func TestBuildRAGPrompt_DefaultPersona(t *testing.T) {
	withContext := BuildRAGPrompt("", "some context")
	withoutContext := BuildRAGPrompt("   ", "")

	assert.True(t, strings.HasPrefix(withContext, "You are a helpful assistant."))
	assert.True(t, strings.HasPrefix(withoutContext, "You are a helpful assistant."))
}

func TestBuildRAGPrompt_BasePromptVerbatim(t *testing.T) {
	base := "Persona line one.\nPersona line two."
	prompt := BuildRAGPrompt(base, "ctx")

	assert.Contains(t, prompt, base)
}
