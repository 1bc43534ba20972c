package ss

import (
	"context"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// On the first page of a listing, ss.lv's "previous page" arrow wraps
// around to the last page.
var lastPageRegexp = regexp.MustCompile(`page(\d+)`)

// PageURLs returns the URLs of every page of the listing rooted at baseURL,
// using the navigation marker found in doc, the listing's first page. Without
// a marker the listing has a single page.
func PageURLs(doc *goquery.Document, baseURL string) []string {
	last := lastPage(doc)
	if last == 0 {
		return []string{baseURL}
	}

	urls := make([]string, 0, last)
	for i := 1; i <= last; i++ {
		urls = append(urls, baseURL+"page"+strconv.Itoa(i)+".html")
	}
	return urls
}

func lastPage(doc *goquery.Document) int {
	href, ok := doc.Find("a.navi[rel=prev]").First().Attr("href")
	if !ok {
		return 0
	}
	m := lastPageRegexp.FindStringSubmatch(href)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Discover fetches the first page of the listing at baseURL and returns the
// URLs of all its pages.
func Discover(ctx context.Context, f Fetcher, baseURL string) ([]string, error) {
	body, err := f.Fetch(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := ParsePage(body)
	if err != nil {
		return nil, err
	}
	return PageURLs(doc, baseURL), nil
}
