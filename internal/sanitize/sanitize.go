// Package sanitize strips scraper boilerplate from raw article text.
// The cleaner is best effort: every step leaves the text unchanged when
// its pattern does not appear, and already-clean text passes through as a
// fixed point.
package sanitize

import (
	"regexp"
	"strings"
)

// contentMarker separates reader-service metadata from the article body.
const contentMarker = "Markdown Content:"

// linePatterns remove known boilerplate line shapes. Applied in order,
// multiline, each match replaced with an empty string.
var linePatterns = []*regexp.Regexp{
	// Accessibility and navigation chrome.
	regexp.MustCompile(`(?m)^Skip to .*$`),
	regexp.MustCompile(`(?m)^(Main menu|Menu|Navigation|Search|Close|Back to top)\s*$`),
	// Subscription and sign-in prompts.
	regexp.MustCompile(`(?m)^.*([Ss]ubscribe|[Ss]ubscription|[Nn]ewsletter sign.?up).*$`),
	regexp.MustCompile(`(?m)^.*([Ss]ign in|[Ss]ign up|[Ll]og in|[Rr]egister) (to|for|now).*$`),
	// Section labels that appear as bare lines.
	regexp.MustCompile(`(?m)^(News|Opinion|Sport|Culture|Lifestyle|Business|Politics|Science|Health|Tech|World|US|UK|Environment)\s*$`),
	// Reader-service image captions.
	regexp.MustCompile(`(?m)^Image \d+:?.*$`),
	// Lines that are only a markdown link.
	regexp.MustCompile(`(?m)^\[[^\]]*\]\([^)]*\)\s*$`),
	// Bullet lines that are only a link.
	regexp.MustCompile(`(?m)^\s*[*+-]\s+\[[^\]]*\]\([^)]*\)\s*$`),
	// Guardian footer chrome.
	regexp.MustCompile(`(?m)^.*(Explore more on these topics|Share full article|Reuse this content|Most viewed).*$`),
}

// literalRemovals are publisher boilerplate strings removed everywhere
// they occur.
var literalRemovals = []string{
	"The Guardian - Back to home",
	"Support the Guardian",
	"Print subscriptions",
	"Search jobs",
	"Original reporting and incisive analysis, direct from the Guardian every morning",
	"Advertisement",
	"Photograph:",
	"Related:",
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// navLabelPrefix matches lines that begin with a navigation label word, used
// when locating the effective start of the article body.
var navLabelPrefix = regexp.MustCompile(`^(News|Opinion|Sport|Culture|Lifestyle|Business|Politics|Science|Health|Tech|World|US|UK|Environment)\b`)

// Clean applies the boilerplate-stripping pipeline to raw scraped article
// text. Output is best effort: unmatched steps are no-ops and failures
// degrade to noisier but non-empty text.
func Clean(raw string) string {
	text := raw

	// 1. Drop reader-service preamble before the content marker.
	if idx := strings.Index(text, contentMarker); idx >= 0 {
		text = text[idx+len(contentMarker):]
	}

	// 2. Line-shape removals.
	for _, re := range linePatterns {
		text = re.ReplaceAllString(text, "")
	}

	// 3. Literal boilerplate removals.
	for _, lit := range literalRemovals {
		text = strings.ReplaceAll(text, lit, "")
	}

	// 4. Collapse runs of blank lines and trim.
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	// 5. Relocate the effective start to the first substantial line.
	text = relocateStart(text)

	return text
}

// relocateStart scans top-down for the first line longer than 50 characters
// that does not begin with a navigation label, and drops everything before
// it. When no such line exists the text is returned unchanged.
func relocateStart(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 50 && !navLabelPrefix.MatchString(trimmed) {
			return strings.Join(lines[i:], "\n")
		}
	}
	return text
}
