package chroma

import (
	"fmt"
	"strings"

	"github.com/itsJino/slainte-llm/internal/model"
)

const documentSeparator = "\n\n---\n\n"

// FormatResult renders a query result as grounding context: documents in
// store order, each followed by its source annotation when present, joined
// by the document separator.
func FormatResult(result *model.QueryResult) string {
	if result == nil || result.Documents == nil {
		return "No documents in response."
	}
	if len(result.Documents) == 0 || len(result.Documents[0]) == 0 {
		return "No documents found."
	}

	documents := result.Documents[0]
	var metadatas []map[string]interface{}
	if len(result.Metadatas) > 0 {
		metadatas = result.Metadatas[0]
	}

	var b strings.Builder
	for i, doc := range documents {
		b.WriteString(doc)
		if i < len(metadatas) && metadatas[i] != nil {
			if source, ok := metadatas[i]["source"]; ok {
				b.WriteString(fmt.Sprintf("\n[Source: %v]", source))
			}
		}
		if i < len(documents)-1 {
			b.WriteString(documentSeparator)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "No relevant documents found."
	}
	return text
}

// ExtractDocuments pulls the plain document bodies out of a query result.
func ExtractDocuments(result *model.QueryResult) []string {
	if result == nil || len(result.Documents) == 0 {
		return nil
	}
	return result.Documents[0]
}

// ExtractRetrieved converts a query result into ordered retrieved documents,
// best match first, carrying source and distance when the store supplied them.
func ExtractRetrieved(result *model.QueryResult) []model.RetrievedDocument {
	if result == nil || len(result.Documents) == 0 {
		return nil
	}
	documents := result.Documents[0]
	var metadatas []map[string]interface{}
	if len(result.Metadatas) > 0 {
		metadatas = result.Metadatas[0]
	}
	var distances []float64
	if len(result.Distances) > 0 {
		distances = result.Distances[0]
	}

	out := make([]model.RetrievedDocument, 0, len(documents))
	for i, doc := range documents {
		item := model.RetrievedDocument{Text: doc}
		if i < len(metadatas) && metadatas[i] != nil {
			if source, ok := metadatas[i]["source"].(string); ok {
				item.Source = source
			}
		}
		if i < len(distances) {
			item.Distance = distances[i]
		}
		out = append(out, item)
	}
	return out
}
