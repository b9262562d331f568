package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Label names recognized in description blocks. The vocabulary is closed:
// it is fixed by the prompt design upstream, so there is no attempt to
// generalize beyond it.
const (
	LabelTripDate    = "行程日期"
	LabelTripTime    = "行程時間"
	LabelPickup      = "上車地址"
	LabelDropoff     = "下車地址"
	LabelMidStop     = "中途停靠"
	LabelMidTransfer = "中途接送"
	LabelRemark      = "備註"
	LabelPhone       = "乘客電話"
)

// labelRule binds a canonical label to the spellings that map onto it.
// Rules are ordered most-specific first so that 其他備註 never falls through
// to a shorter prefix, and 聯絡電話 is distinguished from a bare 電話.
type labelRule struct {
	label   string
	pattern *regexp.Regexp
}

var labelRules = []labelRule{
	{LabelTripDate, labelLinePattern("行程日期")},
	{LabelTripTime, labelLinePattern("行程時間")},
	{LabelPickup, labelLinePattern("上車地址", "上車地點")},
	{LabelDropoff, labelLinePattern("下車地址", "下車地點")},
	{LabelMidStop, labelLinePattern("中途停靠")},
	{LabelMidTransfer, labelLinePattern("中途接送")},
	{LabelRemark, labelLinePattern("其他備註", "備註", "Notes")},
	{LabelPhone, labelLinePattern("乘客電話", "聯絡電話", "旅客電話", "電話")},
}

// labelLinePattern anchors each spelling at line start followed by a half- or
// full-width colon.
func labelLinePattern(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + strings.Join(names, "|") + `)\s*[:：]\s*(.*)$`)
}

var (
	cjkDatePattern  = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	markdownLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]*)\)`)
	flightPattern   = regexp.MustCompile(`(?i)\b([A-Z]{2})[ -]?(\d{2,4})\b`)
	phoneDigitStrip = regexp.MustCompile(`[^\d+]`)
)

// LabeledField is a recognized (label, body) pair. Repeated labels keep their
// own lines; order of appearance is preserved.
type LabeledField struct {
	Label string
	Body  string
}

// ExtractFields scans a description block line by line and returns every
// recognized labeled field in order of first appearance.
func ExtractFields(description string) []LabeledField {
	var fields []LabeledField
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, rule := range labelRules {
			if m := rule.pattern.FindStringSubmatch(line); m != nil {
				fields = append(fields, LabeledField{Label: rule.label, Body: strings.TrimSpace(m[1])})
				break
			}
		}
	}
	return fields
}

// fieldBodies returns the bodies of every field carrying one of the given labels.
func fieldBodies(fields []LabeledField, labels ...string) []string {
	var bodies []string
	for _, f := range fields {
		for _, l := range labels {
			if f.Label == l {
				bodies = append(bodies, f.Body)
				break
			}
		}
	}
	return bodies
}

// ExtractEmbeddedDate recovers the authoritative trip instant embedded in a
// description. It only fires when BOTH a 2024年8月15日-style date and an H:MM
// clock are present somewhere in the text — a lone date or a lone time is not
// enough to override anything. The first match of each wins.
func ExtractEmbeddedDate(description string) *time.Time {
	dm := cjkDatePattern.FindStringSubmatch(description)
	if dm == nil {
		return nil
	}

	// Prefer the clock on the 行程時間 line when labeled, else the first
	// clock anywhere in the text.
	var tm []string
	for _, body := range fieldBodies(ExtractFields(description), LabelTripTime) {
		if m := clockPattern.FindStringSubmatch(body); m != nil {
			tm = m
			break
		}
	}
	if tm == nil {
		tm = clockPattern.FindStringSubmatch(description)
	}
	if tm == nil {
		return nil
	}

	hour, minute := atoi(tm[1]), atoi(tm[2])
	if hour > 23 || minute > 59 {
		return nil
	}

	t := makeLocal(atoi(dm[1]), atoi(dm[2]), atoi(dm[3]), hour, minute)
	return &t
}

// ExtractLinkLabels pulls the label text out of every Markdown [label](url)
// link in a body. The label, not the URL, is the authoritative address text.
func ExtractLinkLabels(body string) []string {
	var labels []string
	for _, m := range markdownLink.FindAllStringSubmatch(body, -1) {
		label := strings.TrimSpace(m[1])
		if label != "" && !strings.EqualFold(label, "search") {
			labels = append(labels, label)
		}
	}
	return labels
}

// stripLinks replaces every Markdown link in a body with its label text.
func stripLinks(body string) string {
	return markdownLink.ReplaceAllString(body, "$1")
}

// NormalizePhone reduces a phone body to digits with an optional leading +.
// 00-prefixed international dial sequences and bare 886 country codes are
// rewritten to + form. Anything with fewer than 6 digits is rejected as a
// stray numeral, returning "".
func NormalizePhone(body string) string {
	s := phoneDigitStrip.ReplaceAllString(body, "")
	if s == "" {
		return ""
	}
	// Keep at most one +, and only at the front.
	plus := strings.HasPrefix(s, "+")
	s = strings.ReplaceAll(s, "+", "")
	switch {
	case plus:
		// already international
	case strings.HasPrefix(s, "00"):
		s = s[2:]
		plus = true
	case strings.HasPrefix(s, "886"):
		plus = true
	}
	if len(s) < 6 {
		return ""
	}
	if plus {
		return "+" + s
	}
	return s
}

// ExtractPhone returns the first valid phone number found among the
// phone-labeled fields of a description.
func ExtractPhone(description string) string {
	for _, body := range fieldBodies(ExtractFields(description), LabelPhone) {
		if p := NormalizePhone(body); p != "" {
			return p
		}
	}
	return ""
}

// ExtractFlightNumber finds the first airline-code + flight-number token in
// the concatenation of title and description. The result is canonicalized to
// upper case with no separator (e.g. "CI123"). Returns "" when absent.
func ExtractFlightNumber(title, description string) string {
	m := flightPattern.FindStringSubmatch(title + "\n" + description)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1]) + m[2]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
