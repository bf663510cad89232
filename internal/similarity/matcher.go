package similarity

import "gonum.org/v1/gonum/mat"

const (
	// TitleThreshold is the cosine score a pair must exceed to match.
	TitleThreshold = 0.65
	// TitleEpsilon is the title score a description-only match must exceed.
	TitleEpsilon = 1e-9
)

type MatchVia string

const (
	ViaTitle       MatchVia = "title"
	ViaDescription MatchVia = "description"
)

// Document is one article prepared for comparison.
type Document struct {
	ArticleID   int64
	SourceID    int64
	Title       []string
	Description []string
}

// Match is a pair of documents (I < J) judged to be the same story.
type Match struct {
	I          int
	J          int
	Similarity float64
	Via        MatchVia
	// SameSource marks a likely update of one outlet's own article.
	SameSource bool
}

type MatchOptions struct {
	Threshold float64
	Epsilon   float64
}

func (o MatchOptions) withDefaults() MatchOptions {
	if o.Threshold <= 0 {
		o.Threshold = TitleThreshold
	}
	if o.Epsilon <= 0 {
		o.Epsilon = TitleEpsilon
	}
	return o
}

// MatchDocuments classifies every pair i < j of docs from their title and
// description similarity matrices. A nil matrix scores every pair 0.
func MatchDocuments(docs []Document, titles, descriptions *mat.SymDense, opts MatchOptions) []Match {
	opts = opts.withDefaults()
	n := len(docs)

	var out []Match
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			titleScore := score(titles, i, j)

			var m Match
			switch {
			case titleScore > opts.Threshold:
				m = Match{I: i, J: j, Similarity: titleScore, Via: ViaTitle}
			case titleScore > opts.Epsilon &&
				len(docs[i].Description) > 0 &&
				len(docs[j].Description) > 0:
				descScore := score(descriptions, i, j)
				if descScore <= opts.Threshold {
					continue
				}
				m = Match{I: i, J: j, Similarity: descScore, Via: ViaDescription}
			default:
				continue
			}

			m.SameSource = docs[i].SourceID == docs[j].SourceID
			out = append(out, m)
		}
	}
	return out
}

func score(sym *mat.SymDense, i, j int) float64 {
	if sym == nil {
		return 0
	}
	if n := sym.SymmetricDim(); i >= n || j >= n {
		return 0
	}
	return sym.At(i, j)
}
