package generator

import (
	"fmt"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Zachdehooge/energy-dashboard/internal/fetcher"
)

const (
	capexColor     = "rgba(75, 192, 192, 0.6)"
	opexColor      = "rgba(255, 99, 132, 0.6)"
	installedColor = "rgba(54, 162, 235, 0.6)"
	optimalColor   = "rgba(255, 206, 86, 0.6)"
	chartWidth     = "100%"
	chartHeight    = "250px"
)

// RenderCharts writes the economic charts of one scenario panel
func RenderCharts(w io.Writer, title string, records []fetcher.EconomicRecord) error {
	if len(records) == 0 {
		return noDataTemplate.Execute(w, title)
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		CapexOpexChart(records),
		CostDistributionChart(records),
		CapacityComparisonChart(records),
	)
	return page.Render(w)
}

// CapexOpexChart compares capital and operational expenditure per generator
func CapexOpexChart(records []fetcher.EconomicRecord) *charts.Bar {
	bar := newBar("CAPEX vs OPEX per Generator", "Cost ($)")
	capex := make([]opts.BarData, 0, len(records))
	opex := make([]opts.BarData, 0, len(records))
	for _, r := range records {
		capex = append(capex, opts.BarData{Value: r.CapitalExpenditure})
		opex = append(opex, opts.BarData{Value: r.OperationalExpenditure})
	}
	bar.SetXAxis(generatorLabels(len(records))).
		AddSeries("CAPEX", capex, charts.WithItemStyleOpts(opts.ItemStyle{Color: capexColor})).
		AddSeries("OPEX", opex, charts.WithItemStyleOpts(opts.ItemStyle{Color: opexColor}))
	return bar
}

// CostDistributionChart shows each generator's share of total cost
func CostDistributionChart(records []fetcher.EconomicRecord) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Total Cost Distribution"}),
	)
	data := make([]opts.PieData, 0, len(records))
	for i, r := range records {
		data = append(data, opts.PieData{Name: generatorLabel(i), Value: r.TotalCost()})
	}
	pie.AddSeries("Total cost", data)
	return pie
}

// CapacityComparisonChart compares installed and optimal capacity per generator
func CapacityComparisonChart(records []fetcher.EconomicRecord) *charts.Bar {
	bar := newBar("Installed vs Optimal Capacity", "Capacity")
	installed := make([]opts.BarData, 0, len(records))
	optimal := make([]opts.BarData, 0, len(records))
	for _, r := range records {
		installed = append(installed, opts.BarData{Value: r.InstalledCapacity})
		optimal = append(optimal, opts.BarData{Value: r.OptimalCapacity})
	}
	bar.SetXAxis(generatorLabels(len(records))).
		AddSeries("Installed Capacity", installed, charts.WithItemStyleOpts(opts.ItemStyle{Color: installedColor})).
		AddSeries("Optimal Capacity", optimal, charts.WithItemStyleOpts(opts.ItemStyle{Color: optimalColor}))
	return bar
}

func newBar(title, yAxis string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Generator"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxis}),
	)
	return bar
}

func generatorLabel(i int) string {
	return fmt.Sprintf("Generator %d", i+1)
}

func generatorLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = generatorLabel(i)
	}
	return labels
}

var noDataTemplate = template.Must(template.New("nodata").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"/><title>{{ . }}</title></head>
<body style="background-color:#121212;color:#999;font-family:Arial, sans-serif;text-align:center;padding-top:100px;">
   <h2>No data available</h2>
</body>
</html>
`))
