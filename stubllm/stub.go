package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Client is a deterministic, no-network model stub intended for CI and local
// end-to-end tests. It answers in the requested report layout so the parser,
// history and event paths all run for real.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

type product struct {
	name, brand, category string
	subs                  [4]int
}

var catalogue = []product{
	{"Refillable Water Bottle", "HydroLoop", "Drinkware", [4]int{3, 2, 2, 2}},
	{"Plastic Shampoo Bottle", "SilkWave", "Personal Care", [4]int{1, 1, 1, 1}},
	{"Organic Cotton Tote", "EarthBag", "Accessories", [4]int{3, 3, 1, 2}},
	{"Single-use Coffee Pod", "QuickBrew", "Beverages", [4]int{0, 1, 1, 0}},
}

func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// output is stable per input so pipelines are reproducible in CI
	sum := sha256.Sum256(append([]byte(mimeType), imageData...))
	short := hex.EncodeToString(sum[:4])
	p := catalogue[int(sum[0])%len(catalogue)]
	score := p.subs[0] + p.subs[1] + p.subs[2] + p.subs[3]

	var b strings.Builder
	fmt.Fprintf(&b, "PRODUCT INFO\nProduct Name: %s\nBrand: %s\nCategory: %s\n\n", p.name, p.brand, p.category)
	fmt.Fprintf(&b, "SUSTAINABILITY SCORE: %d/10\n\n", score)
	fmt.Fprintf(&b, "Score Details:\n• Packaging: %d/3 - stub packaging note\n• Production: %d/3 - stub production note\n", p.subs[0], p.subs[1])
	fmt.Fprintf(&b, "• Company Ethics: %d/2 - stub ethics note\n• Lifecycle Impact: %d/2 - stub lifecycle note\n\n", p.subs[2], p.subs[3])
	fmt.Fprintf(&b, "PROS\n• Stub strength %s\n• Widely available\n\n", short)
	b.WriteString("CONS\n• Stub weakness\n\n")
	b.WriteString("ALTERNATIVES\n\n")
	for i, alt := range []string{"Glass Jar", "Bulk Refill", "Second-hand Option"} {
		fmt.Fprintf(&b, "%d. %s\nBrand: StubCo\nWhy better: less packaging\nPrice: similar\nWhere: local stores\n\n", i+1, alt)
	}
	b.WriteString("ACTION TIPS\n\nRecycling:\n• Rinse before recycling\n\nReduce Impact:\n• Reuse where possible\n\nBetter Choices:\n• Buy refills\n\n")
	fmt.Fprintf(&b, "VERDICT\nStub verdict for %s.\n", p.name)
	return b.String(), nil
}
