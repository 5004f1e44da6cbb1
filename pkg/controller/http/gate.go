package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
)

// GateHandler serves on-demand, read-only gate evaluations
type GateHandler struct {
	source interfaces.ReleaseSource
	gateUC interfaces.GateUseCase
}

// NewGateHandler creates a new gate evaluation handler
func NewGateHandler(source interfaces.ReleaseSource, gateUC interfaces.GateUseCase) *GateHandler {
	return &GateHandler{
		source: source,
		gateUC: gateUC,
	}
}

// Handle evaluates the build gate against the current upstream state and
// returns the decision as JSON. It never triggers a build.
func (h *GateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	head, err := h.source.BranchHead(ctx)
	if err != nil {
		writeError(ctx, w, err, http.StatusBadGateway)
		return
	}

	decision, err := h.gateUC.Evaluate(ctx, false, head.ShortSHA)
	if err != nil {
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(decision); err != nil {
		ctxlog.From(ctx).Error("Failed to encode gate response", "error", err)
	}
}
