package api

import (
	"net/http"

	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/api/response"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/report"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"go.uber.org/zap"
)

const defaultInterval = "1y"

// maxProfileYears bounds the span a profile may cover, which bounds the number
// of samples a single request computes (about 36,500 at daily steps).
const maxProfileYears = 100

// ProfileRequest is the request body for an amortization profile. It names
// exactly one position.
type ProfileRequest struct {
	PortfolioRequest
	PositionID string `json:"position_id"`
	Method     string `json:"method,omitempty"`
	Interval   string `json:"interval,omitempty"`
	Export     bool   `json:"export,omitempty"`
}

// ProfileResponse is a profile and, when exported, where it was written.
type ProfileResponse struct {
	report.Profile
	ExportPath string `json:"export_path,omitempty"`
}

// ProfileHandler handles amortization profile API requests.
type ProfileHandler struct {
	calculators Calculators
	book        Book
	store       archive.Storage
	logger      *zap.Logger
}

// NewProfileHandler creates a new profile handler. A nil store disables
// export.
func NewProfileHandler(calculators Calculators, book Book, store archive.Storage, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{calculators: calculators, book: book, store: store, logger: logger}
}

// Create computes the profile of one position.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decode(r, &req); err != nil {
		response.Fail(w, err)
		return
	}
	if req.PositionID == "" {
		response.Fail(w, core.Errorf(core.ErrInvalidInput, "position_id required"))
		return
	}
	if req.Interval == "" {
		req.Interval = defaultInterval
	}
	interval, err := amortization.ParseInterval(req.Interval)
	if err != nil {
		response.Fail(w, err)
		return
	}
	calc, err := h.calculators.Get(req.Method)
	if err != nil {
		response.Fail(w, err)
		return
	}
	req.PositionIDs = []string{req.PositionID}
	positions, err := req.resolve(h.book)
	if err != nil {
		response.Fail(w, err)
		return
	}
	p := positions[0]
	if p.Bond.MaturityDate.After(p.AcquisitionDate.AddDate(maxProfileYears, 0, 0)) {
		response.Fail(w, core.Errorf(core.ErrInvalidInput,
			"profile of %s spans more than %d years", p.ID, maxProfileYears))
		return
	}

	var samples []amortization.Sample
	for s, err := range calc.Profile(p, interval) {
		if err != nil {
			response.Fail(w, err)
			return
		}
		if err := r.Context().Err(); err != nil {
			response.Fail(w, err)
			return
		}
		samples = append(samples, s)
	}

	resp := ProfileResponse{Profile: report.NewProfile(p.ID, string(calc.Method()), req.Interval, samples)}
	if req.Export {
		if h.store == nil {
			response.Fail(w, core.Errorf(core.ErrConfiguration, "no storage configured for export"))
			return
		}
		path, err := report.Export(r.Context(), h.store, p.ID, samples)
		if err != nil {
			response.Fail(w, err)
			return
		}
		h.logger.Info("profile exported", zap.String("position", p.ID), zap.String("path", path))
		resp.ExportPath = path
	}

	if wantsCSV(r) {
		response.Text(w, http.StatusOK, "text/csv", report.RenderProfileCSV(samples))
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
