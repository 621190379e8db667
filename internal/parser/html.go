package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// containerCandidates is the generic priority list of item-container
// selectors tried when a source supplies no override. The first selector
// yielding any matches wins.
var containerCandidates = []string{
	".event",
	".card",
	".competition",
	".contest",
	"article",
	".post",
	".item",
	"li",
	".row",
	"div[class*='card']",
}

// Anchor-scan fallback limits.
const (
	anchorMinTextLen = 8
	anchorScanCap    = 200
)

// ExtractHTML runs the generic tolerant extractor over an HTML body,
// applying the source's selector overrides where present. The result is
// deduplicated by link-or-title within the source.
func ExtractHTML(body []byte, src sources.Source) ([]domain.NormalizedEvent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, _ := url.Parse(src.URL)

	items := findContainers(doc, src.Selectors.Container)

	var events []domain.NormalizedEvent
	if items != nil {
		events = extractItems(items, src, base)
	} else {
		events = scanAnchors(doc, src, base)
	}

	return dedupeByKey(events), nil
}

// findContainers tries the source override first, then the generic candidate
// list, stopping at the first selector with any matches. Returns nil when
// nothing matches.
func findContainers(doc *goquery.Document, override string) *goquery.Selection {
	selectors := containerCandidates
	if override != "" {
		selectors = append([]string{override}, containerCandidates...)
	}

	for _, sel := range selectors {
		if matches := doc.Find(sel); matches.Length() > 0 {
			return matches
		}
	}

	return nil
}

// extractItems pulls one event out of each matched container.
func extractItems(items *goquery.Selection, src sources.Source, base *url.URL) []domain.NormalizedEvent {
	events := make([]domain.NormalizedEvent, 0, items.Length())

	items.Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, src.Selectors.Title, "h1", "h2", "h3", "h4", ".title", "a")
		link := firstAttr(item, src.Selectors.Link, "a[href]", "href")
		desc := firstText(item, src.Selectors.Description, "p", ".description")
		rawDate := firstText(item, src.Selectors.Date, "time[datetime]", ".date")

		if title == "" && link == "" {
			return
		}

		events = append(events, domain.NormalizedEvent{
			Title:       title,
			URL:         resolveURL(base, link),
			Description: desc,
			StartDate:   ParseDate(rawDate),
			Source:      src.Name,
		})
	})

	return events
}

// scanAnchors is the last-resort extraction: every page anchor with text
// longer than the minimum, capped at anchorScanCap results.
func scanAnchors(doc *goquery.Document, src sources.Source, base *url.URL) []domain.NormalizedEvent {
	var events []domain.NormalizedEvent

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if len(text) <= anchorMinTextLen {
			return true
		}

		href, _ := a.Attr("href")

		events = append(events, domain.NormalizedEvent{
			Title:  text,
			URL:    resolveURL(base, href),
			Source: src.Name,
		})

		return len(events) < anchorScanCap
	})

	return events
}

// firstText tries the override selector, then each fallback, returning the
// first non-empty trimmed text.
func firstText(item *goquery.Selection, override string, fallbacks ...string) string {
	selectors := fallbacks
	if override != "" {
		selectors = append([]string{override}, fallbacks...)
	}

	for _, sel := range selectors {
		found := item.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if dt, ok := found.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return strings.TrimSpace(dt)
		}
		if text := strings.TrimSpace(found.Text()); text != "" {
			return text
		}
	}

	return ""
}

// firstAttr tries the override selector, then the fallback, returning the
// named attribute of the first match.
func firstAttr(item *goquery.Selection, override, fallback, attr string) string {
	selectors := []string{fallback}
	if override != "" {
		selectors = append([]string{override}, selectors...)
	}

	for _, sel := range selectors {
		if val, ok := item.Find(sel).First().Attr(attr); ok && val != "" {
			return val
		}
	}

	return ""
}

// resolveURL makes a possibly-relative link absolute against the source URL.
func resolveURL(base *url.URL, link string) string {
	if link == "" {
		return ""
	}
	if base == nil {
		return link
	}

	ref, err := url.Parse(link)
	if err != nil {
		return link
	}

	return base.ResolveReference(ref).String()
}

// dedupeByKey drops later events sharing an earlier event's link-or-title
// key.
func dedupeByKey(events []domain.NormalizedEvent) []domain.NormalizedEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]domain.NormalizedEvent, 0, len(events))

	for i := range events {
		key := events[i].Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, events[i])
	}

	return out
}
