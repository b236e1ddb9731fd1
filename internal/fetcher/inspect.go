package fetcher

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageSummary describes the scripts of a fetched page. Relative script
// sources resolve against the file:// location once the page is reopened
// locally, so they usually fail to load and their XHR traffic is lost.
type PageSummary struct {
	Title           string
	BaseHref        string
	Scripts         []string
	InlineScripts   int
	RelativeScripts []string
}

// Inspect parses the document on disk and summarizes its scripts.
func Inspect(doc *TemporaryDocument) (*PageSummary, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	gq, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	summary := &PageSummary{
		Title: strings.TrimSpace(gq.Find("title").First().Text()),
	}
	if href, ok := gq.Find("base[href]").First().Attr("href"); ok {
		summary.BaseHref = href
	}

	gq.Find("script").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			summary.InlineScripts++
			return
		}
		src = strings.TrimSpace(src)
		summary.Scripts = append(summary.Scripts, src)
		if summary.BaseHref == "" && isRelative(src) {
			summary.RelativeScripts = append(summary.RelativeScripts, src)
		}
	})

	return summary, nil
}

func isRelative(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}
