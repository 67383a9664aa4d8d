package render

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
	"github.com/docgraph-dev/docgraph/internal/fileutil"
	"github.com/docgraph-dev/docgraph/internal/linker"
)

const (
	SearchIndexFile = "search-index.json"
	SearchVersion   = "docgraph-search-v1"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// SearchDocument is one indexed declaration.
type SearchDocument struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Signature string         `json:"signature,omitempty"`
	Module    string         `json:"module"`
	Line      int            `json:"line"`
	Href      string         `json:"href,omitempty"`
	Doc       string         `json:"doc,omitempty"`
	Length    int            `json:"length"`
	Terms     map[string]int `json:"terms"`
}

// SearchIndex is the serialized full-text index over every declaration in
// the graph. Document order is sorted by ID, so the encoded bytes are stable
// for a given input.
type SearchIndex struct {
	Version       string           `json:"version"`
	DocumentCount int              `json:"document_count"`
	AvgDocLength  float64          `json:"avg_doc_length"`
	DocFreq       map[string]int   `json:"doc_freq"`
	Documents     []SearchDocument `json:"documents"`
}

// SearchResult is one scored hit.
type SearchResult struct {
	ID    string
	Score float64
}

// BuildSearchIndex indexes every declaration of the linked graph. hrefs may
// be nil; documents then carry no page link.
func BuildSearchIndex(index *linker.Index, hrefs map[docnode.DeclID]string) *SearchIndex {
	if index == nil {
		return &SearchIndex{Version: SearchVersion, DocFreq: map[string]int{}}
	}

	documents := make([]SearchDocument, 0, index.Len())
	docFreq := make(map[string]int)
	totalLength := 0

	for _, id := range index.IDs() {
		decl := index.Decl(id)
		signature := Signature(decl)
		summary := decl.Doc.Summary()
		terms := buildTerms(decl.Name, signature, string(id.Module), summary)
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		documents = append(documents, SearchDocument{
			ID:        id.String(),
			Name:      decl.Name,
			Kind:      decl.Kind.String(),
			Signature: signature,
			Module:    string(id.Module),
			Line:      decl.Span.StartLine,
			Href:      hrefs[id],
			Doc:       summary,
			Length:    length,
			Terms:     terms,
		})
		totalLength += length

		for term := range terms {
			docFreq[term]++
		}
	}

	avgDocLength := 0.0
	if len(documents) > 0 {
		avgDocLength = float64(totalLength) / float64(len(documents))
	}

	return &SearchIndex{
		Version:       SearchVersion,
		DocumentCount: len(documents),
		AvgDocLength:  avgDocLength,
		DocFreq:       docFreq,
		Documents:     documents,
	}
}

// WriteSearchIndex encodes the index into outDir. The file is only touched
// when its content changes.
func WriteSearchIndex(outDir string, index *SearchIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search index: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteIfChanged(filepath.Join(outDir, SearchIndexFile), data)
}

// LoadSearchIndex reads a previously written index back from outDir.
func LoadSearchIndex(outDir string) (*SearchIndex, error) {
	path := filepath.Join(outDir, SearchIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("search index missing at %s (run docgraph generate)", path)
		}
		return nil, fmt.Errorf("failed to read search index: %w", err)
	}

	var index SearchIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to decode search index: %w", err)
	}
	if index.DocFreq == nil {
		index.DocFreq = map[string]int{}
	}
	return &index, nil
}

// Search ranks documents against query with BM25 and falls back to fuzzy
// name matching when nothing scores. Ties break on ID, so result order is
// deterministic.
func Search(index *SearchIndex, query string, limit int) []SearchResult {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	seenTerms := make(map[string]bool, len(queryTerms))
	uniqueTerms := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if seenTerms[term] {
			continue
		}
		seenTerms[term] = true
		uniqueTerms = append(uniqueTerms, term)
	}

	k1 := 1.2
	b := 0.75
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]SearchResult, 0)
	for _, doc := range index.Documents {
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range uniqueTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			numerator := tf * (k1 + 1.0)
			denominator := tf + k1*(1.0-b+b*(docLen/avgLen))
			score += idf * (numerator / denominator)
		}
		if score > 0 {
			results = append(results, SearchResult{ID: doc.ID, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		if fallback := fuzzyNameFallback(index.Documents, query, limit); len(fallback) > 0 {
			return fallback
		}
	}
	return results
}

// Document returns the indexed document with the given ID, nil when absent.
func (ix *SearchIndex) Document(id string) *SearchDocument {
	for i := range ix.Documents {
		if ix.Documents[i].ID == id {
			return &ix.Documents[i]
		}
	}
	return nil
}

func buildTerms(name, signature, modulePath, doc string) map[string]int {
	terms := make(map[string]int)
	addWeighted(terms, name, 4)
	addWeighted(terms, signature, 2)
	addWeighted(terms, modulePath, 2)
	addWeighted(terms, doc, 1)
	return terms
}

func addWeighted(terms map[string]int, value string, weight int) {
	if weight <= 0 {
		return
	}
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

func tokenize(value string) []string {
	value = strings.ToLower(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func fuzzyNameFallback(documents []SearchDocument, query string, limit int) []SearchResult {
	needle := normalizeForFuzzy(query)
	if needle == "" {
		return nil
	}

	results := make([]SearchResult, 0)
	for _, doc := range documents {
		candidate := normalizeForFuzzy(doc.Name)
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		threshold := len(candidate) / 3
		if threshold < 2 {
			threshold = 2
		}
		if distance > threshold {
			continue
		}
		results = append(results, SearchResult{ID: doc.ID, Score: 1.0 / float64(1+distance)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func normalizeForFuzzy(value string) string {
	tokens := tokenize(value)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, "")
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			ins := current[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost
			current[j] = minInt(ins, minInt(del, sub))
		}
		prev = current
	}

	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
