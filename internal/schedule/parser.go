package schedule

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	blockIDPattern = regexp.MustCompile(`^inf\d+$`)
	dataIDPattern  = regexp.MustCompile(`^\d+$`)
)

// tokenTags are the elements the site wraps each hourly state in.
var tokenTags = map[string]bool{"s": true, "u": true, "o": true}

// ParseTable extracts the per-group state table from the shutdowns page.
//
// A group block is a <div id="infN" data-id="N"> whose only content is exactly
// HoursPerDay <s>/<u>/<o> tokens, each holding one state symbol. Blocks that
// don't match are skipped; a document with no matching block is a ParseError.
func ParseTable(raw string) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Reason: "read document", Err: err}
	}

	var table Table
	doc.Find("div[id][data-id]").Each(func(_ int, block *goquery.Selection) {
		if g, ok := parseBlock(block); ok {
			table = append(table, g)
		}
	})

	if len(table) == 0 {
		return nil, &ParseError{Reason: "no group blocks found"}
	}
	if err := table.Validate(); err != nil {
		return nil, &ParseError{Reason: "invalid table", Err: err}
	}
	return table, nil
}

func parseBlock(block *goquery.Selection) (Group, bool) {
	if !blockIDPattern.MatchString(block.AttrOr("id", "")) ||
		!dataIDPattern.MatchString(block.AttrOr("data-id", "")) {
		return nil, false
	}

	group := make(Group, 0, HoursPerDay)
	ok := true
	block.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		switch name := goquery.NodeName(node); {
		case name == "#text":
			ok = strings.Trim(node.Text(), " \n\r\t") == ""
		case tokenTags[name]:
			if node.Children().Length() > 0 || len(group) == HoursPerDay {
				ok = false
				break
			}
			st, valid := ParseState(node.Text())
			if !valid {
				ok = false
				break
			}
			group = append(group, st)
		default:
			ok = false
		}
		return ok
	})

	if !ok || len(group) != HoursPerDay {
		return nil, false
	}
	return group, true
}
