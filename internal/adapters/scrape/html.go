package scrape

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/bnema/dipwatch/internal/domain"
)

// The extraction below targets the webDiplomacy board page markup: country
// status lives in td.memberLeftSide cells, turn information in the
// div.titleBar spans, and chat in the #chatboxscroll table rows.

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// classContains reports whether the node's joined class attribute contains
// the substring. The page mixes exact classes ("gameDate") with prefixed
// ones ("memberStatusPlayed"), so substring matching mirrors how the markup
// is actually keyed.
func classContains(n *html.Node, substr string) bool {
	class, ok := attrVal(n, "class")
	if !ok {
		return false
	}
	return strings.Contains(strings.Join(strings.Fields(class), ""), substr)
}

func classTokens(n *html.Node) []string {
	class, _ := attrVal(n, "class")
	return strings.Fields(class)
}

func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			matches = append(matches, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return matches
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	matches := findAll(root, pred)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func byTagClass(tag, substr string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == tag && classContains(n, substr)
	}
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// extractTurn pulls the title-bar fields: game name, date, phase, pause or
// finish state, and the countdown span with its unix timestamp attributes.
func extractTurn(doc *html.Node) domain.Turn {
	titleBar := findFirst(doc, byTagClass("div", "titleBar"))
	if titleBar == nil {
		return domain.Turn{}
	}

	var turn domain.Turn
	if n := findFirst(titleBar, byTagClass("span", "gameName")); n != nil {
		turn.GameName = strings.TrimSpace(collectText(n))
	}
	if n := findFirst(titleBar, byTagClass("span", "gameDate")); n != nil {
		turn.GameDate = strings.TrimSpace(collectText(n))
	}
	if n := findFirst(titleBar, byTagClass("span", "gamePhase")); n != nil {
		turn.GamePhase = strings.TrimSpace(collectText(n))
	}
	if n := findFirst(titleBar, byTagClass("span", "gameTimeRemaining")); n != nil {
		state := collectText(n)
		switch {
		case strings.Contains(state, "Paused"):
			turn.State = domain.GameStatePaused
		case strings.Contains(state, "Finished"):
			turn.State = domain.GameStateFinished
		}
	}
	if n := findFirst(titleBar, byTagClass("span", "timeremaining")); n != nil {
		turn.TimeRemaining = strings.TrimSpace(collectText(n))
		turn.UnixTime = intAttr(n, "unixtime")
		turn.UnixTimeFrom = intAttr(n, "unixtimefrom")
	}

	return turn
}

func intAttr(n *html.Node, key string) *int64 {
	raw, ok := attrVal(n, key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// extractStatus reads the member table's left-side cells into a
// country-to-status map. A status comes from the status icon's alt text, a
// Defeated span, or the memberStatus<...> class suffix, in that priority.
func extractStatus(doc *html.Node) map[string]domain.CountryStatus {
	statuses := map[string]domain.CountryStatus{}

	for _, cell := range findAll(doc, byTagClass("td", "memberLeftSide")) {
		var country, status string
		for _, span := range findAll(cell, func(n *html.Node) bool { return n.Data == "span" }) {
			switch {
			case classContains(span, "StatusIcon"):
				if img := findFirst(span, func(n *html.Node) bool { return n.Data == "img" }); img != nil {
					status, _ = attrVal(img, "alt")
				} else {
					status = strings.TrimSpace(collectText(span))
				}
			case classContains(span, "country"):
				country = strings.TrimSpace(collectText(span))
			}
			if classContains(span, "Defeated") {
				status = domain.StatusDefeated
			}
			if status == "" {
				for _, token := range classTokens(span) {
					if suffix, ok := strings.CutPrefix(token, "memberStatus"); ok {
						status = suffix
					}
				}
			}
		}
		if country != "" && status != "" {
			statuses[country] = domain.CountryStatus{Status: status}
		}
	}

	return statuses
}

// extractMessages reads the chat box rows in page order. The member list of
// the no-tabs chat box maps css country aliases (country1, country2, ...)
// to display names.
func extractMessages(doc *html.Node) []domain.Message {
	aliases := map[string]string{}
	if members := findFirst(doc, byTagClass("div", "chatboxnotabs")); members != nil {
		if list := findFirst(members, byTagClass("div", "chatboxMembersList")); list != nil {
			for _, span := range findAll(list, byTagClass("span", "country")) {
				if tokens := classTokens(span); len(tokens) > 0 {
					aliases[tokens[0]] = strings.TrimSpace(collectText(span))
				}
			}
		}
	}

	chatbox := findFirst(doc, func(n *html.Node) bool {
		id, _ := attrVal(n, "id")
		return n.Data == "div" && id == "chatboxscroll"
	})
	if chatbox == nil {
		return nil
	}

	var messages []domain.Message
	for _, row := range findAll(chatbox, func(n *html.Node) bool { return n.Data == "tr" }) {
		var msg domain.Message
		if ts := findFirst(row, byTagClass("span", "timestamp")); ts != nil {
			msg.Time = strings.TrimSpace(collectText(ts))
		}

		cell := findFirst(row, byTagClass("td", "country"))
		if cell == nil {
			continue
		}
		if tokens := classTokens(cell); len(tokens) > 1 {
			msg.Who = tokens[1]
		}
		if name, ok := aliases[msg.Who]; ok {
			msg.Who = name
		}
		msg.Text = messageText(cell)

		messages = append(messages, msg)
	}

	return messages
}

// messageText concatenates the cell's content, skipping the <strong>
// sender label and the ": " separator the page puts after it.
func messageText(cell *html.Node) string {
	var sb strings.Builder
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "strong" {
			continue
		}
		chunk := collectText(c)
		chunk = strings.TrimPrefix(chunk, ": ")
		sb.WriteString(chunk)
	}
	return sb.String()
}
