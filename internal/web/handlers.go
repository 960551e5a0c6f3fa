package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/apartment-accesscode/internal/classify"
	"github.com/apartment-accesscode/internal/reconcile"
	"github.com/apartment-accesscode/internal/unit"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// ClassifyResponse is the live classification answer for one address
type ClassifyResponse struct {
	Address      string            `json:"address"`
	HasApartment bool              `json:"has_apartment"`
	Family       string            `json:"family"`
	MainAddress  string            `json:"main_address"`
	Confidence   int               `json:"confidence"`
	Unit         *unit.UnitMatch   `json:"unit,omitempty"`
	Rule         reconcile.Verdict `json:"rule"`
	Merged       reconcile.Verdict `json:"merged"`
	AccessCode   string            `json:"access_code"`
	Variations   []string          `json:"variations"`
}

// handleClassify runs the extractor and rule classifier on one address
// without touching the store or the external service
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	street := classify.ExtractStreetSegment(address)
	extraction := unit.Extract(street)
	verdict := classify.Classify(address)

	rule := reconcile.Verdict{
		IsApartment: verdict.IsApartment,
		Confidence:  verdict.Confidence,
		Keywords:    verdict.Keywords,
	}
	merged := reconcile.Maximize(nil, rule)

	writeJSON(w, http.StatusOK, ClassifyResponse{
		Address:      address,
		HasApartment: extraction.HasApartment,
		Family:       extraction.Family.String(),
		MainAddress:  extraction.MainAddress,
		Confidence:   extraction.Confidence,
		Unit:         extraction.Unit,
		Rule:         rule,
		Merged:       merged,
		AccessCode:   reconcile.ExtractAccessCode(extraction.Unit, merged.Keywords),
		Variations:   unit.Variations(street),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "results store is not configured")
		return
	}

	runs, err := s.store.RecentRuns(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleRunResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "results store is not configured")
		return
	}

	runID := mux.Vars(r)["id"]
	results, err := s.store.RunResults(r.Context(), runID,
		queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"results": results,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "results store is not configured")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	results, err := s.store.SearchByAddress(r.Context(), q, queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": results,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "results store is not configured")
		return
	}

	stats, runs, err := s.store.Totals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"stats": stats,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.store != nil {
		if err := s.store.DB.PingContext(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}
