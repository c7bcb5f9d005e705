package analyze

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"golang.org/x/net/html"
)

// Number of record children sampled when voting on field selectors.
const fieldSampleSize = 5

var (
	currencyRe   = regexp.MustCompile(`[$€£¥]\s*\d|(\d[\d,.]*\s*(USD|EUR|GBP))`)
	titleClassRe = regexp.MustCompile(`(?i)(title|name|heading)`)
	priceClassRe = regexp.MustCompile(`(?i)(price|cost|amount)`)
	headingTags  = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}
)

// DeriveFieldHints inspects a record container and proposes a selector for
// one item plus selectors for common fields (title, price, image, link).
// Hints are best-effort: a field that cannot be located maps to "".
func DeriveFieldHints(container *goquery.Selection) models.FieldHints {
	hints := models.FieldHints{Fields: map[string]string{
		"title": "", "price": "", "image": "", "link": "",
	}}
	if container == nil || container.Children().Length() == 0 {
		return hints
	}

	hints.ItemSelector = itemSelector(container)

	items := container.ChildrenFiltered(hints.ItemSelector)
	if items.Length() == 0 {
		items = container.Children()
	}

	titleVotes := map[string]int{}
	priceVotes := map[string]int{}
	titleOrder := []string{}
	priceOrder := []string{}
	hasImage, hasLink := false, false

	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= fieldSampleSize {
			return false
		}
		if s := findTitle(item); s != "" {
			if titleVotes[s] == 0 {
				titleOrder = append(titleOrder, s)
			}
			titleVotes[s]++
		}
		if s := findPrice(item); s != "" {
			if priceVotes[s] == 0 {
				priceOrder = append(priceOrder, s)
			}
			priceVotes[s]++
		}
		if item.Find(`img[src], img[data-src]`).Length() > 0 {
			hasImage = true
		}
		if item.Find("a[href]").Length() > 0 {
			hasLink = true
		}
		return true
	})

	hints.Fields["title"] = topVote(titleVotes, titleOrder)
	hints.Fields["price"] = topVote(priceVotes, priceOrder)
	if hasImage {
		hints.Fields["image"] = "img"
	}
	if hasLink {
		hints.Fields["link"] = "a"
	}
	return hints
}

// itemSelector picks the majority tag(+class) combination among the
// container's direct children.
func itemSelector(container *goquery.Selection) string {
	counts := map[string]int{}
	order := []string{}
	for _, node := range container.Children().Nodes {
		sel := node.Data
		if cls := firstClass(node); cls != "" {
			sel += "." + cls
		}
		if counts[sel] == 0 {
			order = append(order, sel)
		}
		counts[sel]++
	}
	return topVote(counts, order)
}

func findTitle(item *goquery.Selection) string {
	selector := ""
	item.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		node := el.Nodes[0]
		if headingTags[node.Data] {
			selector = node.Data
			return false
		}
		if cls := matchingClass(node, titleClassRe); cls != "" {
			selector = "." + cls
			return false
		}
		return true
	})
	return selector
}

func findPrice(item *goquery.Selection) string {
	selector := ""
	item.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		node := el.Nodes[0]
		if cls := matchingClass(node, priceClassRe); cls != "" {
			selector = "." + cls
			return false
		}
		if el.Children().Length() == 0 && currencyRe.MatchString(el.Text()) {
			selector = node.Data
			if cls := firstClass(node); cls != "" {
				selector += "." + cls
			}
			return false
		}
		return true
	})
	return selector
}

// topVote returns the highest-voted key; ties resolve to the earliest seen
// so hints stay deterministic.
func topVote(votes map[string]int, order []string) string {
	best, bestCount := "", 0
	for _, key := range order {
		if votes[key] > bestCount {
			best, bestCount = key, votes[key]
		}
	}
	return best
}

func firstClass(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			fields := strings.Fields(attr.Val)
			if len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}

func matchingClass(n *html.Node, re *regexp.Regexp) string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, cls := range strings.Fields(attr.Val) {
				if re.MatchString(cls) {
					return cls
				}
			}
		}
	}
	return ""
}
