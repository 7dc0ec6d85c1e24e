package http

import (
	"log/slog"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// StatsHandler renders the dashboard page with charts over the cached
// result sets.
type StatsHandler struct {
	service StatsServiceInterface
	logger  *slog.Logger
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(service StatsServiceInterface, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "stats")),
	}
}

// Dashboard handles GET /stats. The charts cover what was searched recently;
// an empty cache renders empty charts rather than an error.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Snapshot(r.Context())

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Termine je Bundesland",
			Subtitle: "aus den zwischengespeicherten Suchläufen",
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var barX []string
	var barY []opts.BarData
	for _, s := range stats.States {
		barX = append(barX, s.Land)
		barY = append(barY, opts.BarData{Value: s.Count})
	}
	bar.SetXAxis(barX).AddSeries("Termine", barY)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Objektarten"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var pieItems []opts.PieData
	for _, t := range stats.PropertyTypes {
		pieItems = append(pieItems, opts.PieData{Name: t.Type, Value: t.Count})
	}
	pie.AddSeries("Objektarten", pieItems)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		h.logger.ErrorContext(r.Context(), "render state chart",
			slog.String("error", err.Error()))
		return
	}
	if err := pie.Render(w); err != nil {
		h.logger.ErrorContext(r.Context(), "render property type chart",
			slog.String("error", err.Error()))
	}
}
