package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reelhire/reelhire/internal/providers/analysis"
	"github.com/reelhire/reelhire/internal/utils"
)

// AnalyzeHandler exposes the scoring provider to clients that hold no model
// credentials. Request and response are the analysis wire contract:
// competency names in, name-keyed scores and explanations out.
type AnalyzeHandler struct {
	provider analysis.Provider
}

func NewAnalyzeHandler(provider analysis.Provider) *AnalyzeHandler {
	return &AnalyzeHandler{provider: provider}
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	const op = "AnalyzeHandler.Analyze"

	if h.provider == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "analysis is not configured", nil))
		return
	}

	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}
	if len(req.Competencies) == 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "competencies are required", nil))
		return
	}

	res, err := h.provider.Analyze(c.Request.Context(), req)
	if err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "analysis failed", err))
		return
	}

	c.JSON(http.StatusOK, res)
}
