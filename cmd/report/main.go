// Command report prints the dashboard KPIs and aggregations to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/datasource"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func main() {
	start := flag.String("start", "", "first date (YYYY-MM-DD)")
	end := flag.String("end", "", "last date (YYYY-MM-DD)")
	category := flag.String("category", "", "comma-separated categories")
	region := flag.String("region", "", "comma-separated regions")
	channel := flag.String("channel", "", "comma-separated channels")
	customer := flag.String("customer", "", "customer name substring")
	topN := flag.Int("top", 5, "number of products in the ranking")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
	logger := observability.NewLoggerTo(os.Stderr, cfg.Logger)

	f := models.Filters{
		Categories:     splitList(*category),
		Regions:        splitList(*region),
		Channels:       splitList(*channel),
		SearchCustomer: *customer,
	}
	if *start != "" || *end != "" {
		dr, err := models.ParseDateRange(*start, *end)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(2)
		}
		f.DateRange = &dr
	}

	source, err := datasource.NewSource(cfg.Data)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
	analytics := services.NewAnalytics(datasource.NewLoader(source, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dashboard.LoadTimeout)
	defer cancel()

	snap, err := analytics.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Erro ao carregar dados: "+err.Error()))
		os.Exit(1)
	}

	sales := services.ApplyFilters(snap.Sales, f)
	writeReport(os.Stdout, snap, sales, *topN)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeReport(w io.Writer, snap *services.Snapshot, sales []models.Sale, topN int) {
	opts := snap.Options
	var period string
	if opts.DateMin != nil && opts.DateMax != nil {
		period = opts.DateMin.Format(models.DateLayout) + " -> " + opts.DateMax.Format(models.DateLayout)
	}

	kpis := services.CalcKPIs(sales)
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Dashboard de Vendas"),
		line("Linhas", fmt.Sprintf("%d de %d", len(sales), len(snap.Sales))),
		line("Período", period),
		line("Faturação total", fmt.Sprintf("%.2f", kpis.TotalRevenue)),
		line("Nº de vendas", fmt.Sprintf("%d", kpis.SalesCount)),
		line("Ticket médio", fmt.Sprintf("%.2f", kpis.AverageTicket)),
	)
	fmt.Fprintln(w, boxStyle.Render(header))

	var monthly []string
	for _, m := range services.MonthlySales(sales) {
		monthly = append(monthly, line(m.Month.Format("2006-01"), fmt.Sprintf("%.2f", m.Revenue)))
	}
	fmt.Fprintln(w, section("Mensal", monthly))

	var top []string
	for i, p := range services.TopProducts(sales, topN) {
		top = append(top, line(fmt.Sprintf("%d. %s", i+1, p.Product), fmt.Sprintf("%.2f", p.Revenue)))
	}
	fmt.Fprintln(w, section("Top produtos", top))

	var byChannel []string
	for _, c := range services.ChannelDistribution(sales) {
		byChannel = append(byChannel, line(c.Channel, fmt.Sprintf("%.2f", c.Revenue)))
	}
	fmt.Fprintln(w, section("Por canal", byChannel))

	var byRegion []string
	for _, r := range services.RegionDistribution(sales) {
		byRegion = append(byRegion, line(r.Region, fmt.Sprintf("%.2f", r.Revenue)))
	}
	fmt.Fprintln(w, section("Por região", byRegion))
}

func line(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

func section(title string, lines []string) string {
	if len(lines) == 0 {
		lines = []string{labelStyle.Render("Sem dados")}
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(title)}, lines...)...)
}
