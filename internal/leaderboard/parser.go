package leaderboard

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// rosterColumns maps the alliance roster table's header labels to raw record
// fields, in the order the page renders them.
var rosterColumns = []string{
	"Name", "Rank", "Level", "Power", "Helps",
	"RSS Contribution", "ISO Contribution", "Join Date",
}

var playerHrefRe = regexp.MustCompile(`/players/(\d+)`)

// ParseRosterTable extracts member records from a scraped alliance roster
// page. The first row matching the expected header anchors the table; data
// rows with fewer cells than the header are skipped. The player ID comes
// from the /players/<id> link in the name cell when present.
func ParseRosterTable(r io.Reader) ([]RawMemberRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	start := -1
	for i, tr := range rows {
		if isRosterHeader(tr) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("roster table header not found")
	}

	var members []RawMemberRecord
	for _, tr := range rows[start:] {
		cells := rowCells(tr)
		if len(cells) < len(rosterColumns) {
			continue
		}
		members = append(members, memberFromCells(cells))
	}
	return members, nil
}

func isRosterHeader(tr *html.Node) bool {
	cells := rowCells(tr)
	if len(cells) < len(rosterColumns) {
		return false
	}
	for i, want := range rosterColumns {
		if !strings.EqualFold(strings.TrimSpace(getTextContent(cells[i])), want) {
			return false
		}
	}
	return true
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

func memberFromCells(cells []*html.Node) RawMemberRecord {
	text := func(i int) string {
		return strings.TrimSpace(getTextContent(cells[i]))
	}

	return RawMemberRecord{
		ID:         FlexString(extractPlayerID(cells[0])),
		Name:       text(0),
		Rank:       text(1),
		Level:      FlexString(text(2)),
		Power:      FlexString(text(3)),
		Helps:      FlexString(text(4)),
		RSSContrib: FlexString(text(5)),
		ISOContrib: FlexString(text(6)),
		JoinDate:   text(7),
	}
}

func extractPlayerID(td *html.Node) string {
	var id string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if id != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					if m := playerHrefRe.FindStringSubmatch(attr.Val); len(m) == 2 {
						id = m[1]
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(td)
	return id
}

func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(getTextContent(c))
	}
	return text.String()
}
