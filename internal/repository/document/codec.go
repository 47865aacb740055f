package document

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"

	"github.com/whatthegovdoin/govlens/internal/domain"
	domdoc "github.com/whatthegovdoin/govlens/internal/domain/document"
)

// fieldSet names the hash fields a corpus stores its documents under.
type fieldSet struct {
	label     string
	text      string
	embedding string
}

var corpusFields = map[domain.Corpus]fieldSet{
	domain.CorpusArticles:        {label: "name", text: "summary", embedding: "summary_embedding"},
	domain.CorpusExecutiveOrders: {label: "title", text: "order_text", embedding: "order_text_embedding"},
}

// parseHashFields converts a stored hash into a domain Document.
func parseHashFields(id int64, c domain.Corpus, m map[string]string) domdoc.Document {
	f := corpusFields[c]
	return domdoc.Reconstruct(id, c, m[f.label], m[f.text], decodeVector(m[f.embedding]))
}

// decodeVector accepts the native little-endian float32 encoding and, for rows
// migrated from the document database, a JSON array of numbers.
func decodeVector(s string) []float32 {
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var v []float32
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil
		}
		return v
	}
	return bytesToVector(s)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
