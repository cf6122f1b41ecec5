package service

import "strings"

const (
	contextStartMarker = "=== KNOWLEDGE BASE CONTENT ==="
	contextEndMarker   = "=== END KNOWLEDGE BASE ==="

	defaultPersona = "You are a helpful assistant."
)

const groundedRules = `STRICT RULES FOR USING THE KNOWLEDGE BASE:
1. Answer ONLY from the knowledge base content between the markers below.
2. NEVER invent prices, stock levels, product names or any other facts.
3. If the answer is not in the knowledge base content, say you do not have that information.
4. When the user gives a product code or barcode, find the matching row and read the requested field from that row.
   Example: for "price of 8698686923236", locate the row containing [Barcode: 8698686923236] and answer with its [Price: ...] value.
5. Quote values exactly as they appear; do not round or reformat prices.`

const noKnowledgeInstructions = `IMPORTANT: No knowledge base is attached to this conversation.
You have NO product, price or stock information.
If the user asks about products, prices, stock or order details, reply exactly:
"I don't have access to that information right now. Please contact support for product details."
Do not guess or make up an answer.`

// BuildRAGPrompt combines the bot's base persona prompt with retrieved
// knowledge base context. With context, the content is wrapped in fixed
// markers and preceded by grounding rules. Without context, a refusal
// instruction block is emitted so the model does not improvise answers.
// The base prompt is always included verbatim.
func BuildRAGPrompt(basePrompt, context string) string {
	if strings.TrimSpace(basePrompt) == "" {
		basePrompt = defaultPersona
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")

	if strings.TrimSpace(context) == "" {
		b.WriteString(noKnowledgeInstructions)
		return b.String()
	}

	b.WriteString(groundedRules)
	b.WriteString("\n\n")
	b.WriteString(contextStartMarker)
	b.WriteString("\n")
	b.WriteString(context)
	b.WriteString("\n")
	b.WriteString(contextEndMarker)
	return b.String()
}
