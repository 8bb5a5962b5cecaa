package harvest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
)

// RunAndRecord crawls like Run and records the run and its items in st.
// The run row is marked failed when the crawl or the insert fails.
func (h *Harvester) RunAndRecord(ctx context.Context, st storage.Storage) (*models.HarvestRun, []models.CatalogItem, error) {
	run := &models.HarvestRun{ID: uuid.New().String()}
	if err := st.CreateRun(ctx, run); err != nil {
		return nil, nil, err
	}
	h.logger.Info("harvest run started", zap.String("run_id", run.ID))

	items, err := h.Run(ctx)
	if err == nil {
		var added int
		added, err = st.UpsertItems(ctx, run.ID, items)
		run.ItemCount = len(items)
		run.NewItems = added
	}

	run.Status = models.HarvestCompleted
	if err != nil {
		run.Status = models.HarvestFailed
		run.Error = err.Error()
	}
	// The crawl context may already be cancelled; the run row still needs closing.
	if ferr := st.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
		h.logger.Warn("failed to finish harvest run", zap.String("run_id", run.ID), zap.Error(ferr))
	}
	if err != nil {
		return run, nil, fmt.Errorf("harvest run %s: %w", run.ID, err)
	}
	h.logger.Info("harvest run recorded",
		zap.String("run_id", run.ID),
		zap.Int("items", run.ItemCount),
		zap.Int("new_items", run.NewItems))
	return run, items, nil
}
