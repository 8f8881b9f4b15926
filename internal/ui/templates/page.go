// Package templates holds the templ components of the dashboard page.
// Run `templ generate` after editing dashboard.templ.
package templates

import (
	"time"

	"sales-dashboard/internal/models"
)

const (
	Title    = "Dashboard de Vendas"
	Subtitle = "Explora vendas por período, categoria, região/canal. Vê KPIs, gráficos e exporta os dados filtrados."
)

// Page is the server-side state the dashboard starts from.
type Page struct {
	Options     models.FilterOptions
	DefaultTopN int
	MinTopN     int
	MaxTopN     int
}

type pageSignals struct {
	Start            string   `json:"start"`
	End              string   `json:"end"`
	Categories       []string `json:"categories"`
	Regions          []string `json:"regions"`
	Channels         []string `json:"channels"`
	Customer         string   `json:"customer"`
	TopN             int      `json:"topN"`
	Dimension        string   `json:"dimension"`
	MonthlyData      []any    `json:"monthlyData"`
	ProductsData     []any    `json:"productsData"`
	DistributionData []any    `json:"distributionData"`
	RowCount         int      `json:"rowCount"`
}

// signals is the initial Datastar signal set: the full date span, no
// facet selected and empty chart series.
func (p Page) signals() pageSignals {
	return pageSignals{
		Start:            formatDate(p.Options.DateMin),
		End:              formatDate(p.Options.DateMax),
		Categories:       []string{},
		Regions:          []string{},
		Channels:         []string{},
		TopN:             p.DefaultTopN,
		Dimension:        string(models.DimensionChannel),
		MonthlyData:      []any{},
		ProductsData:     []any{},
		DistributionData: []any{},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

const styles = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7fb;color:#1f2933}
header{padding:1rem 2rem;background:#fff;border-bottom:1px solid #e4e7eb}
.subtitle{color:#616e7c;margin:.25rem 0 0}
.layout{display:grid;grid-template-columns:280px 1fr;gap:1.5rem;padding:1.5rem 2rem}
.sidebar label,.sidebar fieldset{display:block;margin-bottom:1rem}
.sidebar select,.sidebar input[type=text],.sidebar input[type=date]{width:100%}
.kpi-grid{display:grid;grid-template-columns:repeat(3,1fr);gap:1rem}
.kpi-card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 2px rgba(0,0,0,.08)}
.kpi-label{display:block;color:#616e7c;font-size:.85rem}
.kpi-value{font-size:1.5rem;font-weight:600}
.modern-table{width:100%;border-collapse:collapse;background:#fff}
.modern-table th,.modern-table td{padding:.4rem .6rem;border-bottom:1px solid #e4e7eb;text-align:left}
.category-badge{background:#e0e8f9;border-radius:4px;padding:0 .4rem}
.notice{background:#e3f8ff;padding:.75rem;border-radius:6px}
.error{background:#ffe3e3;padding:.75rem;border-radius:6px}
</style>`

const chartScript = `<script>
const charts = {};
function draw(id, config) {
  if (charts[id]) charts[id].destroy();
  charts[id] = new Chart(document.getElementById(id), config);
}
function renderCharts(monthly, products, distribution) {
  if (typeof Chart === "undefined") return;
  draw("chart-monthly", {type: "line", data: {labels: monthly.map(m => m.month.slice(0, 7)),
    datasets: [{label: "Faturação (€)", data: monthly.map(m => m.faturacao)}]}});
  draw("chart-products", {type: "bar", data: {labels: products.map(p => p.product),
    datasets: [{label: "Faturação (€)", data: products.map(p => p.faturacao)}]}});
  draw("chart-distribution", {type: "doughnut", data: {labels: distribution.map(d => d.label),
    datasets: [{data: distribution.map(d => d.faturacao)}]}});
}
function exportURL(kind, start, end, categories, regions, channels, customer) {
  const q = new URLSearchParams();
  if (start && end) { q.set("start", start); q.set("end", end); }
  categories.forEach(v => q.append("category", v));
  regions.forEach(v => q.append("region", v));
  channels.forEach(v => q.append("channel", v));
  if (customer) q.set("customer", customer);
  return "/export/" + kind + "?" + q.toString();
}
</script>`
