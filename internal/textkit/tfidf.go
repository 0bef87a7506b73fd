package textkit

import (
	"math"
	"sort"
)

// Term is one scored term from a TF-IDF model.
type Term struct {
	Term  string
	Score float64
}

// TfIdf scores terms across a fixed document collection.
// tf = termCount/docLength, idf = ln((N+1)/(df+1))+1.
type TfIdf struct {
	docs [][]string
	df   map[string]int
}

// NewTfIdf builds a model over pre-tokenized documents. Callers decide
// whether tokens are stemmed.
func NewTfIdf(docs [][]string) *TfIdf {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, token := range doc {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}
	return &TfIdf{docs: docs, df: df}
}

// DocCount returns the number of documents in the model.
func (t *TfIdf) DocCount() int {
	return len(t.docs)
}

// Idf returns the inverse document frequency of a term.
func (t *TfIdf) Idf(term string) float64 {
	n := float64(len(t.docs))
	df := float64(t.df[term])
	return math.Log((n+1)/(df+1)) + 1
}

// Score returns the TF-IDF weight of term within the given document.
func (t *TfIdf) Score(docIndex int, term string) float64 {
	if docIndex < 0 || docIndex >= len(t.docs) {
		return 0
	}
	doc := t.docs[docIndex]
	if len(doc) == 0 {
		return 0
	}
	count := 0
	for _, token := range doc {
		if token == term {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	tf := float64(count) / float64(len(doc))
	return tf * t.Idf(term)
}

// ListTerms returns every distinct term of a document with its TF-IDF score,
// highest first. Ties are broken alphabetically for determinism.
func (t *TfIdf) ListTerms(docIndex int) []Term {
	if docIndex < 0 || docIndex >= len(t.docs) {
		return nil
	}
	doc := t.docs[docIndex]
	if len(doc) == 0 {
		return nil
	}

	counts := make(map[string]int, len(doc))
	for _, token := range doc {
		counts[token]++
	}

	terms := make([]Term, 0, len(counts))
	for term, count := range counts {
		tf := float64(count) / float64(len(doc))
		terms = append(terms, Term{Term: term, Score: tf * t.Idf(term)})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Score != terms[j].Score {
			return terms[i].Score > terms[j].Score
		}
		return terms[i].Term < terms[j].Term
	})

	return terms
}
