// Package report renders the guided terminal walkthrough over one
// import table and writes CSV/JSON/PDF reports from the same data.
package report

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"wtodash/pkg/dataset"
)

var (
	brightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	brightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	brightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// topProductBars caps the product comparison chart so long WTO product
// taxonomies don't flood the terminal.
const topProductBars = 10

// Render prints the full walkthrough: KPI cards, the per-year trend by
// economy, and the economy/product comparisons. An empty table renders
// a no-data notice, never an error.
func Render(table dataset.Table, filter dataset.Filter) error {
	filtered := dataset.Query(table, filter)
	if len(filtered) == 0 {
		pterm.Warning.Println("No data available for the selected filters. Adjust the year range, economies or product groups.")
		return nil
	}

	reporters := dataset.Reporters(filtered)
	products := dataset.ProductGroups(filtered)

	pterm.DefaultSection.Println("Filtered Analysis")
	kpis := pterm.TableData{
		{"Total Import Value (M USD)", brightGreen(formatValue(dataset.Total(filtered)))},
		{"Economies Selected", brightCyan(strconv.Itoa(len(reporters)))},
		{"Product Groups Selected", brightCyan(strconv.Itoa(len(products)))},
	}
	if err := pterm.DefaultTable.WithData(kpis).WithBoxed().Render(); err != nil {
		return err
	}

	if err := renderTrend(filtered, reporters); err != nil {
		return err
	}
	if err := renderComparison("Comparison by Economy", dataset.Aggregate(filtered, dataset.ByReporter), 0); err != nil {
		return err
	}
	return renderComparison("Comparison by Product Group", dataset.Aggregate(filtered, dataset.ByProductGroup), topProductBars)
}

// renderTrend prints a year-by-economy matrix of summed import values.
func renderTrend(t dataset.Table, reporters []string) error {
	pterm.DefaultSection.Println("Import Value Trend Over Time")

	totals := dataset.Aggregate(t, dataset.ByYear, dataset.ByReporter)
	header := append([]string{"Year"}, reporters...)
	data := pterm.TableData{header}
	for _, year := range dataset.Years(t) {
		row := []string{brightYellow(strconv.Itoa(year))}
		for _, reporter := range reporters {
			value, ok := totals[dataset.GroupKey{Year: year, Reporter: reporter}]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, formatValue(value))
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderComparison(title string, totals map[dataset.GroupKey]float64, limit int) error {
	pterm.DefaultSection.Println(title)

	rows := dataset.SortedTotals(totals)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	bars := make([]pterm.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, pterm.Bar{Label: row.Key.Label(), Value: int(row.Value)})
	}
	return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render()
}

func formatValue(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
