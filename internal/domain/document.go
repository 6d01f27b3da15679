// Package domain holds the entities and error taxonomy shared by the query
// pipeline: retrieved documents, query results, and upstream failure kinds.
package domain

import "math"

// RetrievedDocument is a single nearest-neighbor hit from the vector index.
// Distance is the cosine-style dissimilarity reported by the index, in [0, 2].
type RetrievedDocument struct {
	Key      string
	Text     string
	Title    string
	Distance float64
}

// RelevanceScore is 1 - distance rounded to 3 decimals. Not guaranteed to be
// in [0, 1]; reported as-is.
func (d RetrievedDocument) RelevanceScore() float64 {
	return math.Round((1.0-d.Distance)*1000) / 1000
}

// NoRelevantInformationAnswer is returned when the index has no documents
// near the question. Zero hits is a valid outcome, not an error.
const NoRelevantInformationAnswer = "I couldn't find relevant information about your question in my " +
	"knowledge base. Please try rephrasing your question about Hamlet."

// QueryResult is the outcome of a completed query pipeline run.
type QueryResult struct {
	Answer  string
	Sources []RetrievedDocument
}

// Found reports whether any documents backed the answer.
func (r QueryResult) Found() bool {
	return len(r.Sources) > 0
}
