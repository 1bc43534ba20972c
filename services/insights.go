package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"ss-scraper/models"
	"ss-scraper/utils"
)

// maxReportGroups caps the per-district / per-model breakdown.
const maxReportGroups = 10

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// Summarize computes the run report for one category. Price statistics are
// taken over the freshly scraped record set.
func Summarize[T models.Record](v Vertical[T], runID string, scraped, combined []T, added int, fresh []models.Ranked[T]) *models.RunReport {
	report := &models.RunReport{
		RunID:    runID,
		Category: v.Category.Name,
		Scraped:  len(scraped),
		Combined: len(combined),
		Added:    added,
		Fresh:    len(fresh),
		ByGroup:  make(map[string]int),
	}

	var total, perAreaTotal float64
	var priced, perAreaCount int
	for _, r := range scraped {
		if v.Group != nil {
			if g := v.Group(r); g != "" {
				report.ByGroup[g]++
			}
		}
		if v.PerArea != nil {
			if pa := v.PerArea(r); pa.Valid {
				perAreaTotal += pa.Float64
				perAreaCount++
			}
		}

		p := v.Price(r)
		if !p.Valid || p.Float64 <= 0 {
			continue
		}
		if priced == 0 || p.Float64 < report.MinPrice {
			report.MinPrice = p.Float64
		}
		if p.Float64 > report.MaxPrice {
			report.MaxPrice = p.Float64
		}
		total += p.Float64
		priced++
	}

	if priced > 0 {
		report.AvgPrice = round2(total / float64(priced))
	}
	if perAreaCount > 0 {
		report.AvgPerArea = round1(perAreaTotal / float64(perAreaCount))
	}
	return report
}

func (s *InsightService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(s.out, "\033[1;35m  📊 SS.LV %s RUN SUMMARY\033[0m\n", strings.ToUpper(string(r.Category)))
	fmt.Fprintf(s.out, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(s.out, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Run id                 : %s\n", r.RunID)
	fmt.Fprintf(s.out, "  Listings scraped       : \033[1m%d\033[0m\n", r.Scraped)
	fmt.Fprintf(s.out, "  Newly stored           : \033[1m%d\033[0m\n", r.Added)
	fmt.Fprintf(s.out, "  Stored in total        : \033[1m%d\033[0m\n", r.Combined)
	fmt.Fprintf(s.out, "  Fresh offers           : \033[1m%d\033[0m\n", r.Fresh)
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "\033[1;33m  Price Statistics (this scrape)\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	if r.AvgPrice > 0 {
		fmt.Fprintf(s.out, "  Average price : \033[1;32m€%s\033[0m\n", humanize.Commaf(r.AvgPrice))
		fmt.Fprintf(s.out, "  Minimum price : \033[1;32m€%s\033[0m\n", humanize.Commaf(r.MinPrice))
		fmt.Fprintf(s.out, "  Maximum price : \033[1;32m€%s\033[0m\n", humanize.Commaf(r.MaxPrice))
		if r.AvgPerArea > 0 {
			fmt.Fprintf(s.out, "  Average €/m²  : \033[1;32m€%s\033[0m\n", humanize.Commaf(r.AvgPerArea))
		}
	} else {
		fmt.Fprintf(s.out, "  No price data available\n")
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "\033[1;33m  Listings by %s\033[0m\n", groupLabel(r.Category))
	fmt.Fprintf(s.out, "  %s\n", thin)
	if len(r.ByGroup) == 0 {
		fmt.Fprintf(s.out, "  No data\n")
	} else {
		type groupCount struct {
			name  string
			count int
		}
		var groups []groupCount
		for name, cnt := range r.ByGroup {
			groups = append(groups, groupCount{name, cnt})
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].count != groups[j].count {
				return groups[i].count > groups[j].count
			}
			return groups[i].name < groups[j].name
		})
		if len(groups) > maxReportGroups {
			groups = groups[:maxReportGroups]
		}
		for _, g := range groups {
			fmt.Fprintf(s.out, "  %-30s %s (%d)\n", truncate(g.name, 28), bar(g.count), g.count)
		}
	}

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func groupLabel(c models.CategoryName) string {
	if c == models.CategoryCars {
		return "Model"
	}
	return "District"
}

// bar draws a histogram bar, one block per listing up to 40.
func bar(n int) string {
	if n > 40 {
		n = 40
	}
	return strings.Repeat("█", n)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
