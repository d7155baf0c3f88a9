package handles

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/fragrancepalette/backend/internal/queue"
	"github.com/fragrancepalette/backend/internal/task"
	"github.com/fragrancepalette/backend/server/common"
	"github.com/fragrancepalette/backend/server/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	minDescriptionLength = 10
	defaultPageLimit     = 10
	listCacheTTL         = 300 * time.Second
)

// FormulaHandler serves the generation pipeline's HTTP surface: enqueue,
// poll, list.
type FormulaHandler struct {
	db        *db.DB
	cache     *cache.Client
	tasks     *task.Store
	publisher queue.Publisher
}

func NewFormulaHandler(database *db.DB, c *cache.Client, tasks *task.Store, publisher queue.Publisher) *FormulaHandler {
	return &FormulaHandler{db: database, cache: c, tasks: tasks, publisher: publisher}
}

type generateReq struct {
	Description string `json:"description"`
}

type generateResp struct {
	TaskID  string `json:"taskId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Generate validates the description, records a queued task and publishes
// the generation request. The response returns immediately; clients poll
// Status until a terminal state.
func (h *FormulaHandler) Generate(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		common.ErrorStrResp(c, "Invalid token", 401)
		return
	}
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorStrResp(c, "Description must be at least 10 characters long", 400)
		return
	}
	description := strings.TrimSpace(req.Description)
	if len(description) < minDescriptionLength {
		common.ErrorStrResp(c, "Description must be at least 10 characters long", 400)
		return
	}

	taskID := task.NewID()
	// Best-effort: with the cache down the task still runs, pollers just see
	// not-found until a status write lands.
	if err := h.tasks.SetQueued(c.Request.Context(), taskID); err != nil {
		log.Warnf("failed to record queued status for %s: %v", taskID, err)
	}

	msg := queue.GenerateMessage{
		TaskID:      taskID,
		Description: description,
		UserID:      strconv.FormatUint(uint64(user.ID), 10),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.publisher.Publish(c.Request.Context(), queue.FormulaGenerateQueue, msg); err != nil {
		common.ErrorResp(c, err, "Failed to queue formula generation", 500)
		return
	}
	log.Infof("formula generation queued: %s for user %d", taskID, user.ID)

	common.SuccessResp(c, generateResp{
		TaskID:  taskID,
		Status:  string(task.StatusQueued),
		Message: "Your formula generation request has been queued. Please check status using the taskId.",
	})
}

// Status returns the current task record. An expired terminal record is
// indistinguishable from an unknown task; both are 404.
func (h *FormulaHandler) Status(c *gin.Context) {
	rec, err := h.tasks.Get(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		if errs.IsTaskNotFound(err) {
			common.ErrorStrResp(c, "Task not found", 404)
			return
		}
		common.ErrorResp(c, err, "Failed to get status", 500)
		return
	}
	common.SuccessResp(c, rec)
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type listResp struct {
	Formulas   []model.Formula `json:"formulas"`
	Pagination pagination      `json:"pagination"`
}

// List serves a user's formulas cache-aside: the composite key covers user
// and pagination parameters, so invalidation only has to clear the user's
// prefix.
func (h *FormulaHandler) List(c *gin.Context) {
	user, ok := middlewares.UserFromContext(c)
	if !ok {
		common.ErrorStrResp(c, "Invalid token", 401)
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("formulas:%d:%d:%d", user.ID, page, limit)
	if cached, found, err := h.cache.Get(ctx, cacheKey); err == nil && found {
		var resp listResp
		uerr := json.Unmarshal([]byte(cached), &resp)
		if uerr == nil {
			common.SuccessResp(c, resp)
			return
		}
		log.Warnf("corrupt list cache entry %s: %v", cacheKey, uerr)
	}

	formulas, total, err := h.db.ListFormulasByUser(user.ID, page, limit)
	if err != nil {
		common.ErrorResp(c, err, "Failed to fetch formulas", 500)
		return
	}
	resp := listResp{
		Formulas: formulas,
		Pagination: pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}
	if data, err := json.Marshal(resp); err == nil {
		if err := h.cache.SetEx(ctx, cacheKey, string(data), listCacheTTL); err != nil && !errors.Is(err, errs.CacheUnavailable) {
			log.Warnf("failed to populate list cache %s: %v", cacheKey, err)
		}
	}
	common.SuccessResp(c, resp)
}
