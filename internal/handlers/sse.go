package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const maxTableRows = 200

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"euro":  formatEuro,
	"price": func(v float64) string { return strings.TrimPrefix(formatEuro(v), "€ ") },
	"date":  func(s models.Sale) string { return s.Date.Format(models.DateLayout) },
}).Parse(`
{{define "kpis"}}<div id="kpis" class="kpi-grid">
<div class="kpi-card" id="kpi-total"><span class="kpi-label">Faturação Total</span><span class="kpi-value">{{euro .TotalRevenue}}</span></div>
<div class="kpi-card" id="kpi-count"><span class="kpi-label">Nº de Vendas</span><span class="kpi-value">{{.SalesCount}}</span></div>
<div class="kpi-card" id="kpi-ticket"><span class="kpi-label">Ticket Médio</span><span class="kpi-value">{{euro .AverageTicket}}</span></div>
</div>{{end}}

{{define "summary"}}<div id="results-summary">{{if eq .RowCount 0}}<p class="notice">Nenhum registo corresponde aos filtros atuais. Ajusta os filtros na barra lateral.</p>{{else}}<p>{{.RowCount}} registos encontrados.</p>{{end}}</div>{{end}}

{{define "table"}}<div id="sales-table">
<table class="modern-table">
<thead><tr><th>ID</th><th>Data</th><th>Cliente</th><th>Produto</th><th>Categoria</th><th>Qtd</th><th>Preço</th><th>Total</th><th>Região</th><th>Canal</th></tr></thead>
<tbody>
{{range $i, $s := .Rows}}<tr>
<td>{{$s.ID}}</td>
<td>{{date $s}}</td>
<td>{{$s.Customer}}</td>
<td>{{$s.Product}}</td>
<td><span class="category-badge">{{$s.Category}}</span></td>
<td>{{$s.Quantity}}</td>
<td>{{price $s.UnitPrice}}</td>
<td><strong>{{price $s.Total}}</strong></td>
<td>{{$s.Region}}</td>
<td>{{$s.Channel}}</td>
</tr>{{end}}
</tbody>
</table>
{{if .Truncated}}<p class="table-note">A mostrar {{len .Rows}} de {{.Total}} registos. Exporta para ver todos.</p>{{end}}
</div>{{end}}

{{define "error"}}<div id="results-summary"><p class="error">{{.}}</p></div>{{end}}
`))

type SSEHandlers struct {
	analytics   *services.Analytics
	logger      *slog.Logger
	defaultTopN int
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, defaultTopN int) *SSEHandlers {
	return &SSEHandlers{
		analytics:   analytics,
		logger:      logger,
		defaultTopN: defaultTopN,
	}
}

// dashboardSignals mirrors the data-signals of the dashboard page.
type dashboardSignals struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Channels   []string `json:"channels"`
	Customer   string   `json:"customer"`
	TopN       int      `json:"topN"`
	Dimension  string   `json:"dimension"`
}

func (s dashboardSignals) query(defaultTopN int) (services.Query, error) {
	var q services.Query

	dr, err := parseDateRange(s.Start, s.End)
	if err != nil {
		return q, err
	}
	dim, err := models.ParseDimension(s.Dimension)
	if err != nil {
		return q, err
	}

	q.Filters = models.Filters{
		DateRange:      dr,
		Categories:     s.Categories,
		Regions:        s.Regions,
		Channels:       s.Channels,
		SearchCustomer: strings.TrimSpace(s.Customer),
	}
	q.TopN = s.TopN
	if q.TopN == 0 {
		q.TopN = defaultTopN
	}
	q.Dimension = dim
	return q, nil
}

type tableData struct {
	Rows      []models.Sale
	Total     int
	Truncated bool
}

func render(name string, data any) (string, error) {
	var buf strings.Builder
	err := fragments.ExecuteTemplate(&buf, name, data)
	return buf.String(), err
}

func (h *SSEHandlers) renderTable(sales []models.Sale) (string, error) {
	data := tableData{Rows: sales, Total: len(sales)}
	if len(sales) > maxTableRows {
		data.Rows = sales[:maxTableRows]
		data.Truncated = true
	}
	return render("table", data)
}

// HandleDashboard recomputes the whole page for the filter state carried in
// the Datastar signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if r.Method != http.MethodGet || r.URL.Query().Has("datastar") {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			writeFailure(w, r, h.logger, errors.BadRequestWrap(err, "invalid signals"))
			return
		}
	}

	q, err := signals.query(h.defaultTopN)
	if err != nil {
		writeFailure(w, r, h.logger, errors.BadRequestWrap(err, "invalid filter signals"))
		return
	}

	sse := datastar.NewSSE(w, r)

	view, err := h.analytics.Dashboard(r.Context(), q)
	if err != nil {
		h.logger.Error("build dashboard", "error", err)
		html, renderErr := render("error", "Não foi possível carregar os dados: "+err.Error())
		if renderErr == nil {
			sse.PatchElements(html)
		}
		return
	}

	for _, part := range []struct {
		name string
		data any
	}{
		{"kpis", view.KPIs},
		{"summary", view},
	} {
		html, err := render(part.name, part.data)
		if err != nil {
			h.logger.Error("render fragment", "fragment", part.name, "error", err)
			return
		}
		sse.PatchElements(html)
	}

	html, err := h.renderTable(view.Sales)
	if err != nil {
		h.logger.Error("render sales table", "error", err)
		return
	}
	sse.PatchElements(html)

	chartSignals, err := json.Marshal(map[string]any{
		"monthlyData":      view.Monthly,
		"productsData":     view.TopProducts,
		"distributionData": view.Distribution,
		"rowCount":         view.RowCount,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(chartSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
