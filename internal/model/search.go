package model

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

// QueryResult mirrors the ChromaDB query response. The outer dimension of
// each field corresponds to the query embeddings (always one here); the
// inner dimension holds the top-K matches, best first.
type QueryResult struct {
	IDs       [][]string                 `json:"ids,omitempty"`
	Documents [][]string                 `json:"documents,omitempty"`
	Metadatas [][]map[string]interface{} `json:"metadatas,omitempty"`
	Distances [][]float64                `json:"distances,omitempty"`
}

// DocumentCount reports how many documents the first query slot holds.
func (r *QueryResult) DocumentCount() int {
	if r == nil || len(r.Documents) == 0 {
		return 0
	}
	return len(r.Documents[0])
}

type RetrievedDocument struct {
	Text     string  `json:"text"`
	Source   string  `json:"source,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

type RetrievalResult struct {
	Documents []RetrievedDocument `json:"documents"`
	Query     string              `json:"query"`
	Topic     string              `json:"topic"`
	Fallback  bool                `json:"fallback"`
}
