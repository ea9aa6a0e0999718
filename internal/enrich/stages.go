package enrich

import (
	"context"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/types"
)

// TranslateStage fills the translated title/description/content variants.
// Text that is already majority-Korean is left alone.
type TranslateStage struct {
	Client     *ai.Client
	TargetLang string
}

func (s *TranslateStage) Name() string { return "translate" }

func (s *TranslateStage) Process(ctx context.Context, item *types.Item) error {
	if !s.Client.Available() {
		return nil
	}
	if item.TitleKo == "" && item.Title != "" && !ai.MajorityKorean(item.Title) {
		item.TitleKo = s.Client.Translate(ctx, item.Title, s.TargetLang)
	}
	if item.DescriptionKo == "" && item.Description != "" && !ai.MajorityKorean(item.Description) {
		item.DescriptionKo = s.Client.Translate(ctx, item.Description, s.TargetLang)
	}
	if item.ContentKo == "" && item.ContentText != "" && !ai.MajorityKorean(item.ContentText) {
		item.ContentKo = s.Client.Translate(ctx, item.ContentText, s.TargetLang)
	}
	return nil
}

// AdvanceStage moves pending items forward in the lifecycle once the earlier
// stages have had their chance: items that still need vision/LLM analysis go
// to pending_analysis, the rest to completed.
type AdvanceStage struct{}

func (s *AdvanceStage) Name() string { return "advance_status" }

func (s *AdvanceStage) Process(_ context.Context, item *types.Item) error {
	if item.Status != types.StatusPending {
		return nil
	}
	if item.ScreenshotURL != "" && item.ContentText == "" {
		// Screenshot-only captures still need the analysis pass.
		item.Status = types.StatusPendingAnalysis
		return nil
	}
	item.Status = types.StatusCompleted
	return nil
}
