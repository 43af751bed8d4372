// Package extract scans free-form answer text for embedded learning
// resources so remote-generated answers render the same way as local ones.
package extract

import (
	"regexp"
	"strings"

	"github.com/dishalabs/disha-agent/internal/domain"
)

var (
	// Video platform links, full or shortened form. The capture group is the
	// video identifier.
	videoPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{6,})`)

	// Direct document links and explicit "link to notes: <url>" phrasing.
	notesFilePattern   = regexp.MustCompile(`(?:https?://)?[^\s<>"']+\.(?:pdf|docx?|pptx?)\b`)
	notesPhrasePattern = regexp.MustCompile(`(?i)link to notes:\s*([^\s<>"']+)`)

	// Explicit article/blog-post phrasing followed by a URL.
	articlePattern = regexp.MustCompile(`(?i)(?:article|blog post):\s*([^\s<>"']+)`)
)

// Extract runs three independent scans over text and returns the matches as
// typed resources: videos first, then notes, then articles, each kind in
// first-seen order. No match yields an empty slice.
func Extract(text string) []domain.Resource {
	var out []domain.Resource

	for _, m := range videoPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, domain.Resource{
			Kind:  domain.ResourceVideo,
			Title: m[1],
			URL:   normalizeURL(m[0]),
		})
	}

	seenNotes := map[string]bool{}
	for _, m := range notesFilePattern.FindAllString(text, -1) {
		url := normalizeURL(m)
		if seenNotes[url] {
			continue
		}
		seenNotes[url] = true
		out = append(out, domain.Resource{
			Kind:  domain.ResourceNotes,
			Title: titleFromURL(url),
			URL:   url,
		})
	}
	for _, m := range notesPhrasePattern.FindAllStringSubmatch(text, -1) {
		url := normalizeURL(m[1])
		if seenNotes[url] {
			continue
		}
		seenNotes[url] = true
		out = append(out, domain.Resource{
			Kind:  domain.ResourceNotes,
			Title: titleFromURL(url),
			URL:   url,
		})
	}

	for _, m := range articlePattern.FindAllStringSubmatch(text, -1) {
		url := normalizeURL(m[1])
		out = append(out, domain.Resource{
			Kind:  domain.ResourceArticle,
			Title: titleFromURL(url),
			URL:   url,
		})
	}

	return out
}

// normalizeURL ensures an explicit secure scheme.
func normalizeURL(raw string) string {
	raw = strings.TrimRight(raw, ".,;)")
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// titleFromURL derives a display title from the last path segment.
func titleFromURL(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
