package handle

import (
	"encoding/json"
	"net/http"

	"solvesnap/api/internal/solution"
)

type ParseRequest struct {
	Raw string `json:"raw"`
}

type ParseResponse struct {
	// Result is null when raw was empty (no result yet).
	Result *solution.Result `json:"result"`
}

// Parse runs the result parser on caller-supplied text without touching any
// engine. Useful for the front end and for debugging answer formats.
func (h *Handle) Parse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ParseResponse{Result: solution.Parse(req.Raw)})
}
