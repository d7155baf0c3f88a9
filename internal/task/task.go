package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/fragrancepalette/backend/internal/model"
	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Record is the full task view stored under task:{id}. Every transition
// rewrites the whole record; there is no partial update and no
// compare-and-swap, so concurrent writers simply overwrite each other.
type Record struct {
	Status   Status         `json:"status"`
	Progress int            `json:"progress"`
	Message  string         `json:"message"`
	Result   *model.Formula `json:"result,omitempty"`
}

func (r Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

const (
	// PendingTTL keeps in-flight records alive for the whole generation
	// window; TerminalTTL only has to survive one client poll cycle.
	PendingTTL  = 600 * time.Second
	TerminalTTL = 300 * time.Second
)

// NewID builds a task identifier from the enqueue timestamp plus a random
// suffix. Practically unique, not guaranteed globally unique.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("task_%d_%s", time.Now().UnixMilli(), suffix)
}
