package api

import (
	"net/http"

	"github.com/newthinker/bondcalc/internal/api/response"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/report"
)

// ValuationRequest is the request body for valuing positions.
type ValuationRequest struct {
	PortfolioRequest
	Date   string `json:"date"`
	Method string `json:"method,omitempty"`
}

// ValuationHandler handles valuation API requests.
type ValuationHandler struct {
	calculators Calculators
	book        Book
}

// NewValuationHandler creates a new valuation handler. book may be nil when
// no portfolio is configured.
func NewValuationHandler(calculators Calculators, book Book) *ValuationHandler {
	return &ValuationHandler{calculators: calculators, book: book}
}

// Value values the requested positions at the requested date.
func (h *ValuationHandler) Value(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if err := decode(r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	date, err := portfolio.ParseDate(req.Date)
	if err != nil {
		response.Fail(w, err)
		return
	}
	calc, err := h.calculators.Get(req.Method)
	if err != nil {
		response.Fail(w, err)
		return
	}
	positions, err := req.resolve(h.book)
	if err != nil {
		response.Fail(w, err)
		return
	}

	valuations, err := calc.ValueAll(r.Context(), positions, date)
	if err != nil {
		response.Fail(w, err)
		return
	}

	if wantsCSV(r) {
		response.Text(w, http.StatusOK, "text/csv", report.RenderValuationsCSV(valuations))
		return
	}
	rows := make([]report.ValuationRow, len(valuations))
	for i, v := range valuations {
		rows[i] = report.NewValuationRow(v)
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"valuations": rows,
		"count":      len(rows),
	})
}
