package rag

import (
	"fmt"
	"strings"

	"docent-ai/internal/corpus"
)

// AssembleEvidence formats retrieved records into the evidence block fed to
// the answer prompt, in ranked order.
//
// The accession number is excluded here unconditionally, not filtered later:
// the answer model cannot echo a value it never received. The identifier stays
// available in the structured metadata the retriever carries alongside each
// record, for the explicit-request case handled by the answer prompt.
func AssembleEvidence(results []corpus.Retrieved) string {
	var b strings.Builder
	for _, res := range results {
		doc := res.Doc
		b.WriteString(fmt.Sprintf("### 참고 자료 (출처: %s) ###\n", doc.SourceLabel()))
		if artifact, ok := doc.(corpus.Artifact); ok {
			b.WriteString(fmt.Sprintf("유물명: %s\n", artifact.Name))
		}
		b.WriteString(fmt.Sprintf("내용: %s\n", doc.Text()))
		if link := doc.Link(); link != "" {
			b.WriteString(fmt.Sprintf("관련 링크: %s\n", link))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
