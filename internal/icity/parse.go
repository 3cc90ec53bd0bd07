package icity

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/output"
)

// Marker strings from the service's rendered pages. The login page shows a
// "start using the web version" pitch with a username/email field; the
// verification interstitial carries a two-step / safety verification label.
const (
	loginMarkerPitch  = "开始使用网页版"
	loginMarkerField  = "用户名 / Email"
	verifyMarkerSteps = "两步验证"
	verifyMarkerSafe  = "安全验证"
)

var (
	entryIDPattern = regexp.MustCompile(`/a/([A-Za-z0-9]+)`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// ParseCSRFToken extracts the Rails CSRF token from a page, checking the
// csrf-token meta tag first and the authenticity_token form input second.
// Returns "" when neither is present.
func ParseCSRFToken(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	if meta := findNode(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attrVal(n, "name") == "csrf-token"
	}); meta != nil {
		if token := attrVal(meta, "content"); token != "" {
			return token
		}
	}

	if input := findNode(doc, func(n *html.Node) bool {
		return n.Data == "input" && attrVal(n, "name") == "authenticity_token"
	}); input != nil {
		return attrVal(input, "value")
	}

	return ""
}

// IsLoginPage reports whether a response body is the anonymous login page,
// which the service serves in place of user content when the session is
// absent or expired.
func IsLoginPage(body []byte) bool {
	page := string(body)
	return strings.Contains(page, loginMarkerPitch) && strings.Contains(page, loginMarkerField)
}

// IsVerificationPage reports whether a response body is a verification
// challenge the tool cannot answer (two-step or safety verification).
func IsVerificationPage(body []byte) bool {
	page := string(body)
	return strings.Contains(page, verifyMarkerSteps) || strings.Contains(page, verifyMarkerSafe)
}

// ParseEntries extracts all diary records from one listing page.
// An absent posts list means an empty page, which ends pagination upstream.
func ParseEntries(body []byte, base *url.URL) ([]*diary.Record, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, output.NewProtocolError("could not parse the entries page: " + err.Error())
	}

	list := findNode(doc, func(n *html.Node) bool {
		return n.Data == "ul" && hasClass(n, "posts-list")
	})
	if list == nil {
		return nil, nil
	}

	var records []*diary.Record
	currentDate := ""

	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		switch {
		case hasClass(li, "day-cut"):
			currentDate = cleanText(collectText(li, ""))
		case hasClass(li, "diary"):
			if record := parseDiaryItem(li, base, currentDate); record != nil {
				records = append(records, record)
			}
		}
	}

	return records, nil
}

// parseDiaryItem extracts one record from a li.diary node.
// Items without the timestamp permalink are skipped; everything else is
// best-effort, matching how leniently the service renders old entries.
func parseDiaryItem(li *html.Node, base *url.URL, dateLabel string) *diary.Record {
	permalink := findNode(li, func(n *html.Node) bool {
		return n.Data == "a" && hasClass(n, "timeago") && strings.HasPrefix(attrVal(n, "href"), "/a/")
	})
	if permalink == nil {
		return nil
	}

	href := attrVal(permalink, "href")
	record := &diary.Record{
		ID:        entryID(href),
		DateLabel: dateLabel,
		SourceURL: resolveURL(base, href),
	}

	if clock := findNode(permalink, func(n *html.Node) bool {
		return n.Data == "time" && hasClass(n, "hours")
	}); clock != nil {
		record.DateTime = attrVal(clock, "datetime")
		record.LocalTime = attrVal(clock, "title")
		record.TimeLabel = cleanText(collectText(clock, ""))
	}

	if heading := findNode(li, func(n *html.Node) bool { return n.Data == "h4" }); heading != nil {
		if link := findNode(heading, func(n *html.Node) bool { return n.Data == "a" }); link != nil {
			record.Title = cleanText(collectText(link, ""))
		}
	}

	if comment := findNode(li, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "comment")
	}); comment != nil {
		record.Body = textWithBreaks(comment)
	}

	if location := findNode(li, func(n *html.Node) bool {
		return n.Data == "span" && hasClass(n, "location")
	}); location != nil {
		// Drop the icon-font <i> glyph, keep the place name
		record.Location = cleanText(collectText(location, "i"))
	}

	record.Extra = dataAttrs(li)
	return record
}

// entryID pulls the short entry identifier out of an /a/<id> permalink,
// falling back to the raw href when the shape is unexpected.
func entryID(href string) string {
	if m := entryIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return href
}

// resolveURL makes a permalink absolute against the service base URL.
func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// dataAttrs collects the node's data-* attributes as an opaque map.
// Returns nil when there are none, so the field marshals away.
func dataAttrs(n *html.Node) map[string]string {
	var extra map[string]string
	for _, attr := range n.Attr {
		name, ok := strings.CutPrefix(attr.Key, "data-")
		if !ok || attr.Val == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[name] = attr.Val
	}
	return extra
}

// findNode returns the first element in the subtree matching the predicate,
// depth-first. The predicate only sees element nodes.
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasClass reports whether the node's class attribute contains the class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// collectText concatenates the text content of a subtree, skipping the
// subtrees of elements named skip (pass "" to skip nothing).
func collectText(n *html.Node, skip string) string {
	var builder strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && skip != "" && node.Data == skip {
			return
		}
		if node.Type == html.TextNode {
			builder.WriteString(node.Data)
			builder.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return builder.String()
}

// textWithBreaks renders an entry body as plain text, one line per text run.
// Runs map to the source's <br>/paragraph structure, so line breaks survive
// while tag soup does not.
func textWithBreaks(n *html.Node) string {
	var lines []string
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			if line := cleanText(node.Data); line != "" {
				lines = append(lines, line)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(lines, "\n")
}

// cleanText normalizes scraped text: non-breaking spaces and icon-font
// glyphs (private use area) become spaces, whitespace runs collapse to one
// space, and the ends are trimmed.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\u00a0' || (r >= 0xE000 && r <= 0xF8FF) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
