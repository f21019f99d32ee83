package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelhire/reelhire/internal/cache"
	"github.com/reelhire/reelhire/internal/models"
	mongorepo "github.com/reelhire/reelhire/internal/repositories/mongo"
	"github.com/reelhire/reelhire/internal/utils"
)

// UpdatesChannel carries "collection changed" nudges to connected clients.
const UpdatesChannel = "records:updates"

const collectionCacheTTL = 30 * time.Second

// RecordsHandler serves the whole-collection read/replace endpoints. This is
// the entire write surface of the record store: no per-job routes exist, by
// contract.
type RecordsHandler struct {
	jobs   mongorepo.JobCollectionRepository
	drafts mongorepo.DraftRepository
	cache  cache.Cache
	redis  *redis.Client
	log    *logrus.Logger
}

func NewRecordsHandler(jobs mongorepo.JobCollectionRepository, drafts mongorepo.DraftRepository, c cache.Cache, rdb *redis.Client, log *logrus.Logger) *RecordsHandler {
	if log == nil {
		log = logrus.New()
	}
	return &RecordsHandler{jobs: jobs, drafts: drafts, cache: c, redis: rdb, log: log}
}

func (h *RecordsHandler) GetJobs(c *gin.Context) {
	const op = "RecordsHandler.GetJobs"
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached []models.Job
		if hit, err := h.cache.GetJSON(ctx, cache.KeyJobCollection, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	jobs, err := h.jobs.FetchAll(ctx)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read job collection", err))
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, cache.KeyJobCollection, jobs, collectionCacheTTL); err != nil {
			h.log.WithError(err).Warn("failed to cache job collection")
		}
	}

	c.JSON(http.StatusOK, jobs)
}

func (h *RecordsHandler) ReplaceJobs(c *gin.Context) {
	const op = "RecordsHandler.ReplaceJobs"
	ctx := c.Request.Context()

	var jobs []models.Job
	if err := c.ShouldBindJSON(&jobs); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "request body must be a job array", err))
		return
	}

	if err := h.jobs.ReplaceAll(ctx, jobs); err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to replace job collection", err))
		return
	}

	if h.cache != nil {
		_ = h.cache.Del(ctx, cache.KeyJobCollection)
	}
	h.publishChanged(c, "jobs")

	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(jobs)})
}

func (h *RecordsHandler) GetDrafts(c *gin.Context) {
	const op = "RecordsHandler.GetDrafts"
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached []models.Draft
		if hit, err := h.cache.GetJSON(ctx, cache.KeyDraftCollection, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	drafts, err := h.drafts.FetchAll(ctx)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read draft collection", err))
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, cache.KeyDraftCollection, drafts, collectionCacheTTL); err != nil {
			h.log.WithError(err).Warn("failed to cache draft collection")
		}
	}

	c.JSON(http.StatusOK, drafts)
}

func (h *RecordsHandler) ReplaceDrafts(c *gin.Context) {
	const op = "RecordsHandler.ReplaceDrafts"
	ctx := c.Request.Context()

	var drafts []models.Draft
	if err := c.ShouldBindJSON(&drafts); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "request body must be a draft array", err))
		return
	}

	if err := h.drafts.ReplaceAll(ctx, drafts); err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to replace draft collection", err))
		return
	}

	if h.cache != nil {
		_ = h.cache.Del(ctx, cache.KeyDraftCollection)
	}
	h.publishChanged(c, "drafts")

	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(drafts)})
}

func (h *RecordsHandler) publishChanged(c *gin.Context, collection string) {
	if h.redis == nil {
		return
	}
	payload := `{"type":"collection_changed","collection":"` + collection + `"}`
	if err := h.redis.Publish(c.Request.Context(), UpdatesChannel, payload).Err(); err != nil {
		h.log.WithError(err).Warn("failed to publish collection change")
	}
}
