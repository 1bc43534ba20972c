package notify

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"ss-scraper/models"
)

const missingCell = "-"

// Formatter renders a category's fresh subset as chat messages.
type Formatter[T models.Record] struct {
	// Noun is the plural listing noun used in the headline.
	Noun    string
	Columns []string
	Row     func(T) []string
	Address func(T) string
	Link    func(T) string
}

// Messages returns the messages for fresh in sending order: a headline, a
// summary table, an address listing and a link listing. An empty subset
// yields the single NoNewOffersText message.
func (f Formatter[T]) Messages(fresh []models.Ranked[T]) []Message {
	if len(fresh) == 0 {
		return []Message{{Text: NoNewOffersText}}
	}

	headline := fmt.Sprintf("%d new %s on ss.lv in the last 20 hours", len(fresh), f.Noun)

	rows := make([][]string, len(fresh))
	var addresses, links strings.Builder
	for i, r := range fresh {
		rank := strconv.Itoa(r.Rank)
		rows[i] = append([]string{rank}, f.Row(r.Record)...)
		fmt.Fprintf(&addresses, "%s. %s\n", rank, f.Address(r.Record))
		fmt.Fprintf(&links, "%s. %s\n", rank, f.Link(r.Record))
	}

	return []Message{
		{Text: headline},
		{Text: renderTable(append([]string{"#"}, f.Columns...), rows), Monospace: true},
		{Text: strings.TrimRight(addresses.String(), "\n")},
		{Text: strings.TrimRight(links.String(), "\n")},
	}
}

func renderTable(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return cell
			}
			return cell.Align(lipgloss.Right)
		}).
		String()
}

// FlatFormatter renders apartments: price, area, rooms and price per m².
func FlatFormatter() Formatter[models.Flat] {
	return Formatter[models.Flat]{
		Noun:    "flats",
		Columns: []string{"price €", "m²", "rooms", "€/m²"},
		Row: func(f models.Flat) []string {
			return []string{money(f.Price), decimal(f.Area), integer(f.Rooms), decimal(f.PricePerM2)}
		},
		Address: func(f models.Flat) string {
			if f.District == "" {
				return f.StreetAddress
			}
			return f.District + ", " + f.StreetAddress
		},
		Link: func(f models.Flat) string { return f.Link },
	}
}

// CarFormatter renders cars: price, year and mileage.
func CarFormatter() Formatter[models.Car] {
	return Formatter[models.Car]{
		Noun:    "cars",
		Columns: []string{"price €", "year", "km"},
		Row: func(c models.Car) []string {
			return []string{money(c.Price), integer(c.Year), money(c.Mileage)}
		},
		Address: func(c models.Car) string {
			return strings.TrimSpace(c.Model + " " + c.Engine)
		},
		Link: func(c models.Car) string { return c.Link },
	}
}

func money(v sql.NullFloat64) string {
	if !v.Valid {
		return missingCell
	}
	return humanize.Comma(int64(v.Float64))
}

func decimal(v sql.NullFloat64) string {
	if !v.Valid {
		return missingCell
	}
	return humanize.Commaf(v.Float64)
}

func integer(v sql.NullInt64) string {
	if !v.Valid {
		return missingCell
	}
	return strconv.FormatInt(v.Int64, 10)
}
