package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stratumviz/stratum/pkg/errors"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// nodeInfo is the wire representation of a single scene node.
type nodeInfo struct {
	Symbol   string     `json:"symbol"`
	Layer    int        `json:"layer"`
	Position [3]float64 `json:"position"`
	Name     string     `json:"name,omitempty"`
	Label    *uint32    `json:"label,omitempty"`
}

// handleGetNode looks up one node by its symbol, e.g. "p(42)".
func (h *Handler) handleGetNode(w http.ResponseWriter, r *http.Request) {
	e, ok := h.scenes.get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "scene_not_found", "no scene with that id")
		return
	}

	sym := chi.URLParam(r, "symbol")
	if err := errors.ValidateSymbol(sym); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_symbol", errors.UserMessage(err))
		return
	}

	id, err := parseSymbol(sym)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_symbol", err.Error())
		return
	}

	node, ok := e.graph.Node(id)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "node_not_found", "no node with that symbol")
		return
	}

	pos := node.Position()
	info := nodeInfo{
		Symbol:   node.ID.Symbol(),
		Layer:    int(node.Layer),
		Position: [3]float64{pos.X, pos.Y, pos.Z},
	}
	if sem, ok := node.Semantic(); ok {
		info.Name = sem.Name
		label := sem.SemanticLabel
		info.Label = &label
	}

	h.writeJSON(w, http.StatusOK, info)
}

// parseSymbol inverts NodeID.Symbol: "p(42)" or a bare decimal id.
func parseSymbol(sym string) (scenegraph.NodeID, error) {
	open := strings.IndexByte(sym, '(')
	if open < 0 {
		n, err := strconv.ParseUint(sym, 10, 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeInvalidInput, "invalid node symbol: %q", sym)
		}
		return scenegraph.NodeID(n), nil
	}

	idx, err := strconv.ParseUint(strings.TrimSuffix(sym[open+1:], ")"), 10, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid node symbol: %q", sym)
	}
	return scenegraph.NewNodeID(rune(sym[0]), idx), nil
}
