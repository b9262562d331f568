package normalizer

import (
	"regexp"
	"strings"
)

// DisplayStopCap bounds how many stops each rendered list carries. The cap is
// display-only: the stored description keeps every recovered stop, so a later
// extraction pass never loses data.
const DisplayStopCap = 3

// AttachSide selects which leg ambiguous extra stops are attached to.
type AttachSide int

const (
	// AttachPickup attaches extras beneath the pickup line (default policy).
	AttachPickup AttachSide = iota
	// AttachDropoff attaches extras beneath the drop-off line.
	AttachDropoff
)

// ReconcileOptions tunes stop reconciliation. The zero value matches the
// production defaults.
type ReconcileOptions struct {
	AttachTo   AttachSide
	DisplayCap int
}

// StopSummary is the deduplicated, ordered stop breakdown of one description.
type StopSummary struct {
	Pickup   []string
	Dropoff  []string
	MidStops []string
}

var (
	addressDelims  = regexp.MustCompile(`[、，,；;/]`)
	arrowLine      = regexp.MustCompile(`^(?:→|->)\s*(.+)$`)
	arrowSplit     = regexp.MustCompile(`\s*(?:→|->)\s*`)
	sequenceLine   = regexp.MustCompile(`^(?:第[一二三四五六七八九十\d]+站|先到|再到|途經|途经|經過|接著)\s*[:：]?\s*(.+)$`)
	addressShapeRe = regexp.MustCompile(`[\p{Han}\d][^\s]*?(?:路|街|大道|巷|弄|段|號|号|樓|楼|站|機場|机场|航廈|航厦|飯店|酒店|車站)`)
	urlishPattern  = regexp.MustCompile(`(?i)https?://|www\.`)
)

// Reconcile merges every address notation found in a description — labeled
// lines, Markdown link labels, arrow sequences, and address-shaped tokens in
// remarks — into a deduplicated, order-preserving stop summary.
func Reconcile(description string) StopSummary {
	return ReconcileWithOptions(description, ReconcileOptions{})
}

// ReconcileWithOptions is Reconcile with an explicit policy.
func ReconcileWithOptions(description string, opts ReconcileOptions) StopSummary {
	limit := opts.DisplayCap
	if limit <= 0 {
		limit = DisplayStopCap
	}

	fields := ExtractFields(description)

	pickup := splitAddresses(fieldBodies(fields, LabelPickup))
	dropoff := splitAddresses(fieldBodies(fields, LabelDropoff))
	mids := splitAddresses(fieldBodies(fields, LabelMidStop, LabelMidTransfer))

	seen := map[string]bool{}
	for _, a := range pickup {
		seen[a] = true
	}
	for _, a := range dropoff {
		seen[a] = true
	}

	// Extra stop signals not already captured by the labeled lines.
	var extras []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isLabeledLine(line) {
			continue
		}
		if m := arrowLine.FindStringSubmatch(line); m != nil {
			for _, seg := range arrowSplit.Split(m[1], -1) {
				extras = append(extras, normalizeAddress(seg))
			}
			continue
		}
		if m := sequenceLine.FindStringSubmatch(line); m != nil {
			extras = append(extras, normalizeAddress(m[1]))
		}
	}
	for _, body := range fieldBodies(fields, LabelRemark) {
		extras = append(extras, scanAddressShaped(body)...)
	}

	midSeen := map[string]bool{}
	for _, a := range mids {
		midSeen[a] = true
	}
	for _, a := range extras {
		if a == "" || seen[a] || midSeen[a] {
			continue
		}
		if !isAddressShaped(a) {
			continue
		}
		mids = append(mids, a)
		midSeen[a] = true
	}

	return StopSummary{
		Pickup:   capList(pickup, limit),
		Dropoff:  capList(dropoff, limit),
		MidStops: capList(mids, limit),
	}
}

// RenderAugmented re-assembles a description so that recovered mid-stops
// appear as an explicit 中途停靠 line directly beneath the first pickup (or
// drop-off) line. Burying them in a generic remarks field is not an option:
// that placement is indistinguishable from optional notes and AI
// summarization tends to drop it. Descriptions already carrying the line are
// returned unchanged.
func RenderAugmented(description string, summary StopSummary, opts ReconcileOptions) string {
	if len(summary.MidStops) == 0 || strings.Contains(description, LabelMidStop+"：") {
		return description
	}

	anchor := labelRuleFor(LabelPickup)
	if opts.AttachTo == AttachDropoff {
		anchor = labelRuleFor(LabelDropoff)
	}

	lines := strings.Split(description, "\n")
	insert := LabelMidStop + "：" + strings.Join(summary.MidStops, "、")

	for i, line := range lines {
		if anchor != nil && anchor.MatchString(strings.TrimSpace(line)) {
			out := make([]string, 0, len(lines)+1)
			out = append(out, lines[:i+1]...)
			out = append(out, insert)
			out = append(out, lines[i+1:]...)
			return strings.Join(out, "\n")
		}
	}

	// No anchor line at all: append at the end rather than losing the stops.
	return description + "\n" + insert
}

// splitAddresses splits labeled bodies into individual address strings.
// Markdown link labels take precedence over raw delimiter splitting.
func splitAddresses(bodies []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, body := range bodies {
		parts := []string{}
		if labels := ExtractLinkLabels(body); len(labels) > 0 {
			parts = labels
			// Anything outside the links may still hold plain addresses.
			if rest := strings.TrimSpace(markdownLink.ReplaceAllString(body, "")); rest != "" {
				parts = append(parts, addressDelims.Split(rest, -1)...)
			}
		} else {
			parts = addressDelims.Split(body, -1)
		}
		for _, p := range parts {
			a := normalizeAddress(p)
			if a == "" || seen[a] {
				continue
			}
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// scanAddressShaped pulls address-shaped tokens out of free remark text.
func scanAddressShaped(body string) []string {
	var out []string
	for _, part := range addressDelims.Split(stripLinks(body), -1) {
		for _, tok := range strings.Fields(part) {
			a := normalizeAddress(tok)
			if isAddressShaped(a) {
				out = append(out, a)
			}
		}
	}
	return out
}

// isAddressShaped reports whether a candidate looks like a Taiwanese address:
// a CJK or digit character running into one of the fixed address suffixes,
// and not a URL or the literal placeholder "search".
func isAddressShaped(s string) bool {
	if s == "" || urlishPattern.MatchString(s) || strings.EqualFold(s, "search") {
		return false
	}
	return addressShapeRe.MatchString(s)
}

// normalizeAddress is the dedup key and display form of one address candidate.
func normalizeAddress(s string) string {
	s = strings.TrimSpace(stripLinks(s))
	if urlishPattern.MatchString(s) || strings.EqualFold(s, "search") {
		return ""
	}
	return s
}

func isLabeledLine(line string) bool {
	for _, rule := range labelRules {
		if rule.pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func labelRuleFor(label string) *regexp.Regexp {
	for _, rule := range labelRules {
		if rule.label == label {
			return rule.pattern
		}
	}
	return nil
}

func capList(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
