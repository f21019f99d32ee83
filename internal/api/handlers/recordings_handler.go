package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reelhire/reelhire/internal/services"
	"github.com/reelhire/reelhire/internal/storage"
	"github.com/reelhire/reelhire/internal/utils"
)

// RecordingsHandler is the upload collaborator for client contexts that
// cannot reach object storage directly: capture artifact in, durable URL
// out.
type RecordingsHandler struct {
	artifacts *services.ArtifactService
}

func NewRecordingsHandler(artifacts *services.ArtifactService) *RecordingsHandler {
	return &RecordingsHandler{artifacts: artifacts}
}

type UploadRecordingResponse struct {
	URL string `json:"url"`
}

func (h *RecordingsHandler) Upload(c *gin.Context) {
	const op = "RecordingsHandler.Upload"

	if h.artifacts == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "recording storage is not configured", nil))
		return
	}

	jobID := c.PostForm("job_id")
	candidateID := c.PostForm("candidate_id")
	questionIndex, qerr := strconv.Atoi(c.PostForm("question_index"))
	if jobID == "" || candidateID == "" || qerr != nil || questionIndex < 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "job_id, candidate_id, and question_index are required", nil))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "recording file is required", err))
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "video/webm"
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer f.Close()

	objectName := storage.RecordingObjectName(jobID, candidateID, questionIndex, mimeType)
	url, err := h.artifacts.Upload(c.Request.Context(), objectName, mimeType, f)
	if err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "failed to store recording", err))
		return
	}

	c.JSON(http.StatusOK, UploadRecordingResponse{URL: url})
}

func (h *RecordingsHandler) List(c *gin.Context) {
	const op = "RecordingsHandler.List"

	if h.artifacts == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "recording storage is not configured", nil))
		return
	}

	jobID := c.Query("job_id")
	candidateID := c.Query("candidate_id")
	if jobID == "" || candidateID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "job_id and candidate_id are required", nil))
		return
	}

	rows, err := h.artifacts.ListRecordings(c.Request.Context(), jobID, candidateID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
