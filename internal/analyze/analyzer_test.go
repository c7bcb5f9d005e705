package analyze

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const productGridPage = `<!DOCTYPE html>
<html><head><title>Shop</title></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<main>
  <section>
    <div class="product-grid">
      <div class="product-card"><h2>Red Mug</h2><span class="price">$9.99</span><a href="/p/1"><img src="/1.jpg"></a></div>
      <div class="product-card"><h2>Blue Mug</h2><span class="price">$11.50</span><a href="/p/2"><img src="/2.jpg"></a></div>
      <div class="product-card"><h2>Green Mug</h2><span class="price">$8.00</span><a href="/p/3"><img src="/3.jpg"></a></div>
      <div class="product-card"><h2>Tall Glass</h2><span class="price">$4.25</span><a href="/p/4"><img src="/4.jpg"></a></div>
      <div class="product-card"><h2>Short Glass</h2><span class="price">$3.75</span><a href="/p/5"><img src="/5.jpg"></a></div>
      <div class="product-card"><h2>Steel Fork</h2><span class="price">$2.10</span><a href="/p/6"><img src="/6.jpg"></a></div>
    </div>
  </section>
</main>
<footer><p>All rights reserved. Contact us for wholesale pricing and orders.</p></footer>
</body></html>`

func newTestAnalyzer() *Analyzer {
	return New(zerolog.Nop())
}

func TestAnalyzeFindsProductGrid(t *testing.T) {
	container, score := newTestAnalyzer().Analyze(productGridPage)
	if container == nil {
		t.Fatal("expected a container, got nil")
	}
	if score <= 0 {
		t.Fatalf("expected positive score, got %f", score)
	}
	if cls, _ := container.Attr("class"); cls != "product-grid" {
		t.Errorf("expected product-grid container, got class %q", cls)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	first, firstScore := a.Analyze(productGridPage)
	for i := 0; i < 3; i++ {
		container, score := a.Analyze(productGridPage)
		if score != firstScore {
			t.Fatalf("run %d: score %f, want %f", i, score, firstScore)
		}
		got, _ := container.Attr("class")
		want, _ := first.Attr("class")
		if got != want {
			t.Fatalf("run %d: container %q, want %q", i, got, want)
		}
	}
}

func buildListPage(children []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><main><div class="target">`)
	for _, c := range children {
		b.WriteString(c)
	}
	b.WriteString(`</div></main></body></html>`)
	return b.String()
}

func TestHomogeneousListOutscoresMixedContent(t *testing.T) {
	a := newTestAnalyzer()

	homogeneous := make([]string, 8)
	for i := range homogeneous {
		homogeneous[i] = `<div class="item">A listing entry with a reasonable amount of text in it</div>`
	}
	mixed := []string{
		`<h2>A section heading with a reasonable amount of text</h2>`,
		`<p>An introductory paragraph with a reasonable amount of text</p>`,
		`<span class="a">Some inline content with a reasonable amount of text</span>`,
		`<p class="b">Another paragraph with a reasonable amount of text here</p>`,
		`<blockquote>A quoted passage with a reasonable amount of text</blockquote>`,
		`<span class="c">More inline content with a reasonable amount of text</span>`,
		`<p class="d">Yet another paragraph with a reasonable amount of text</p>`,
		`<h3>Another heading with a reasonable amount of text in it</h3>`,
	}

	_, homogScore := a.Analyze(buildListPage(homogeneous))
	_, mixedScore := a.Analyze(buildListPage(mixed))
	if homogScore <= mixedScore {
		t.Errorf("homogeneous list scored %f, mixed content scored %f; want homogeneous higher",
			homogScore, mixedScore)
	}
}

func TestRootLevelContainerIsPenalized(t *testing.T) {
	a := newTestAnalyzer()
	rows := strings.Repeat(`<div class="row">A listing entry with plenty of descriptive text</div>`, 6)

	atRoot := `<html><body><div class="grid">` + rows + `</div></body></html>`
	nested := `<html><body><main><section><div class="grid">` + rows + `</div></section></main></body></html>`

	_, rootScore := a.Analyze(atRoot)
	_, nestedScore := a.Analyze(nested)
	if rootScore >= nestedScore {
		t.Errorf("root-level container scored %f, nested scored %f; want nested higher",
			rootScore, nestedScore)
	}
}

func TestCardListBeatsSingletonWrapper(t *testing.T) {
	page := `<html><body><main>
		<ul>
			<li class="card">First card with enough text to look like content</li>
			<li class="card">Second card with enough text to look like content</li>
			<li class="card">Third card with enough text to look like content</li>
			<li class="card">Fourth card with enough text to look like content</li>
			<li class="card">Fifth card with enough text to look like content</li>
		</ul>
		<div>
			<h1>A page heading with enough text to look like content</h1>
			<form>one unrelated form element with some filler text</form>
			<p>A single paragraph with enough text to look like content</p>
		</div>
	</main></body></html>`

	container, _ := newTestAnalyzer().Analyze(page)
	if container == nil {
		t.Fatal("expected a container")
	}
	if tag := goquery.NodeName(container); tag != "ul" {
		t.Errorf("picked <%s>, want <ul>", tag)
	}
}

func TestAnalyzeNoCandidates(t *testing.T) {
	a := newTestAnalyzer()
	for _, src := range []string{
		"",
		"<p>hello</p>",
		"<html><body><div><span>only one child</span></div></body></html>",
	} {
		container, score := a.Analyze(src)
		if container != nil || score != 0 {
			t.Errorf("Analyze(%q) = (%v, %f), want (nil, 0)", src, container, score)
		}
	}
}

func TestAnalyzeMalformedHTMLDoesNotPanic(t *testing.T) {
	a := newTestAnalyzer()
	// The html5 parser recovers from all of these; we only require no panic
	// and a sane return.
	for _, src := range []string{
		"<div><<<><span",
		"<ul><li>a<li>b<li>c</ul",
		strings.Repeat("<div>", 100),
	} {
		container, score := a.Analyze(src)
		if score < 0 {
			t.Errorf("Analyze(%q) returned negative score %f", src, score)
		}
		_ = container
	}
}

func TestSnippetTruncation(t *testing.T) {
	container, _ := newTestAnalyzer().Analyze(productGridPage)
	if container == nil {
		t.Fatal("expected a container")
	}
	full := Snippet(container, 1<<20)
	if !strings.Contains(full, "Red Mug") {
		t.Errorf("snippet should contain item text, got %q", full)
	}
	short := Snippet(container, 50)
	if len(short) != 50 {
		t.Errorf("truncated snippet length = %d, want 50", len(short))
	}
	if Snippet(nil, 100) != "" {
		t.Error("nil container should yield empty snippet")
	}
}
