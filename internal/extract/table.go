package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const minProductRows = 3

var (
	barcodeTokenRe = regexp.MustCompile(`^\d{13}$`)
	priceTokenRe   = regexp.MustCompile(`^\d{1,6}[.,]\d{2}$`)
)

// NormalizeProductTable detects dense product-table dumps, recognizable by
// repeated 13-digit identifiers, and flattens them into one ROW record per
// identifier so each product embeds as a discrete fact instead of one
// undifferentiated blob. Text without enough identifiers passes through
// unchanged.
func NormalizeProductTable(text string) string {
	// Tabular extraction already emits structured ROW records.
	if strings.Contains(text, "ROW: [") {
		return text
	}

	tokens := strings.Fields(text)

	type product struct {
		barcode string
		index   int
	}

	var products []product
	seen := make(map[string]bool)
	for i, tok := range tokens {
		candidate := strings.Trim(tok, `.,;:"'()[]`)
		if barcodeTokenRe.MatchString(candidate) && !seen[candidate] {
			seen[candidate] = true
			products = append(products, product{barcode: candidate, index: i})
		}
	}

	if len(products) < minProductRows {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PRODUCT BARCODE DATABASE — Total products: %d\n", len(products))

	for n, p := range products {
		windowEnd := len(tokens)
		if n+1 < len(products) {
			windowEnd = products[n+1].index
		}
		windowStart := p.index + 1
		if n == 0 && p.index > 0 {
			// Leading tokens before the first identifier describe it.
			windowStart = 0
		}

		var descParts []string
		price := ""
		for i := windowStart; i < windowEnd; i++ {
			if i == p.index {
				continue
			}
			tok := strings.Trim(tokens[i], `"'`)
			if tok == "" {
				continue
			}
			if price == "" && priceTokenRe.MatchString(strings.TrimLeft(tok, "$€£₺")) {
				price = tok
				continue
			}
			descParts = append(descParts, tok)
		}

		fmt.Fprintf(&b, "ROW: [Barcode: %s]", p.barcode)
		if len(descParts) > 0 {
			fmt.Fprintf(&b, " [Description: %s]", strings.Join(descParts, " "))
		}
		if price != "" {
			fmt.Fprintf(&b, " [Price: %s]", price)
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}
