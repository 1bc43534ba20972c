package ss

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ss-scraper/models"
)

// ParsePage builds a queryable document from fetched page markup.
func ParsePage(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// Rows yields the listing rows of doc in document order. A listing row is
// recognised by its two leading structural cells (checkbox and thumbnail)
// carrying no text; those two cells are dropped from Cells.
func Rows(doc *goquery.Document) iter.Seq[models.RawRecord] {
	return func(yield func(models.RawRecord) bool) {
		doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			raw, ok := rowRecord(row)
			if !ok {
				return true
			}
			return yield(raw)
		})
	}
}

func rowRecord(row *goquery.Selection) (models.RawRecord, bool) {
	var cells []string
	row.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(td.Text()))
	})
	if len(cells) < 2 || cells[0] != "" || cells[1] != "" {
		return models.RawRecord{}, false
	}

	raw := models.RawRecord{Cells: cells[2:]}
	if a := row.Find("a.am").First(); a.Length() > 0 {
		raw.Link, _ = a.Attr("href")
		raw.AdID, _ = a.Attr("id")
	}
	return raw, true
}
