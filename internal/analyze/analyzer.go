// Package analyze locates the repeating record container in a page and
// derives per-field selector hints from it. It works on raw HTML only; no
// network or browser involvement.
package analyze

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	// Containers with fewer direct children than this are never candidates.
	minChildren = 2

	// Visible characters per descendant element below which a container is
	// treated as navigation chrome rather than content.
	minTextDensity = 10.0

	tagHomogeneityWeight   = 1.0
	classHomogeneityWeight = 1.5
	semanticListBonus      = 1.2
	rootPenalty            = 0.2
	lowDensityPenalty      = 0.7
)

// containerTags are the block-level tags considered as record containers.
var containerTags = []string{
	"div", "ul", "ol", "table", "tbody", "section", "main", "article", "aside", "dl",
}

// semanticListTags carry an inherent "this is a list" signal.
var semanticListTags = map[string]bool{
	"ul": true, "ol": true, "table": true, "tbody": true, "dl": true,
}

// Analyzer scores container elements by how likely they are to hold the
// page's repeating records.
type Analyzer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "analyzer").Logger()}
}

// Analyze parses htmlSrc and returns the best-scoring record container with
// its score. Returns (nil, 0) when no candidate has at least two direct
// element children. Malformed input never produces an error; the html5
// parser recovers and scoring proceeds on whatever tree results.
func (a *Analyzer) Analyze(htmlSrc string) (*goquery.Selection, float64) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		a.log.Warn().Err(err).Msg("HTML parse failed, no container")
		return nil, 0
	}

	var best *goquery.Selection
	bestScore := 0.0

	doc.Find(strings.Join(containerTags, ", ")).Each(func(_ int, sel *goquery.Selection) {
		score := a.scoreContainer(sel)
		// Strictly greater keeps the first of equal candidates in document
		// order, so repeated runs on the same input pick the same node.
		if score > bestScore {
			best, bestScore = sel, score
		}
	})

	if best == nil {
		a.log.Debug().Msg("no repeating container found")
		return nil, 0
	}

	a.log.Debug().
		Float64("score", bestScore).
		Str("container", signature(best.Nodes[0])).
		Msg("selected record container")
	return best, bestScore
}

func (a *Analyzer) scoreContainer(sel *goquery.Selection) float64 {
	children := sel.Children()
	n := children.Length()
	if n < minChildren {
		return 0
	}

	tagCounts := map[string]int{}
	classCounts := map[string]int{}
	for _, node := range children.Nodes {
		tagCounts[node.Data]++
		if key := classKey(node); key != "" {
			classCounts[key]++
		}
	}

	score := float64(n)
	score += float64(maxCount(tagCounts)) / float64(n) * tagHomogeneityWeight
	score += float64(maxCount(classCounts)) / float64(n) * classHomogeneityWeight

	if semanticListTags[sel.Nodes[0].Data] {
		score += semanticListBonus
	}

	// Outermost wrappers (body, or direct children of body/html) match
	// everything and nothing; damp them hard.
	if isRootLevel(sel.Nodes[0]) {
		score *= rootPenalty
	}

	text := strings.TrimSpace(sel.Text())
	descendants := sel.Find("*").Length() + 1
	if float64(len(text))/float64(descendants) < minTextDensity {
		score *= lowDensityPenalty
	}

	return score
}

// Snippet renders the container back to HTML, truncated to maxLen bytes, for
// inclusion in a generation prompt.
func Snippet(sel *goquery.Selection, maxLen int) string {
	if sel == nil {
		return ""
	}
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	if len(h) > maxLen {
		h = h[:maxLen]
	}
	return h
}

// SampleHTML is the degenerate-page fallback: the head of the raw document.
func SampleHTML(htmlSrc string, maxLen int) string {
	if len(htmlSrc) > maxLen {
		return htmlSrc[:maxLen]
	}
	return htmlSrc
}

func maxCount(counts map[string]int) int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max
}

// classKey normalizes a node's class attribute to an order-independent key.
func classKey(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			tokens := strings.Fields(attr.Val)
			if len(tokens) == 0 {
				return ""
			}
			sort.Strings(tokens)
			return strings.Join(tokens, " ")
		}
	}
	return ""
}

func isRootLevel(n *html.Node) bool {
	if n.Data == "body" || n.Data == "html" {
		return true
	}
	p := n.Parent
	return p == nil || p.Type == html.DocumentNode || p.Data == "html" || p.Data == "body"
}

// signature is a compact tag#id / tag.class description used for logging.
func signature(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	for _, attr := range n.Attr {
		if attr.Key == "id" && attr.Val != "" {
			b.WriteString("#" + attr.Val)
			return b.String()
		}
	}
	if key := classKey(n); key != "" {
		b.WriteString("." + strings.ReplaceAll(key, " ", "."))
	}
	return b.String()
}
