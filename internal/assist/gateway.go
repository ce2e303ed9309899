package assist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finedu/classroom/internal/platform/cache"
)

// Degraded-mode placeholder texts. The gateway never fails: callers get one
// of these strings and proceed with it in place of generated content.
const (
	msgNotConfigured      = "Error: content assist is not configured."
	msgLessonPlanFailed   = "Failed to generate lesson plan. Please try again."
	msgFeedbackFailed     = "Failed to generate feedback."
	msgNoLessonPlanOutput = "No content generated."
	msgNoFeedbackOutput   = "No feedback generated."
)

const draftCacheTTL = 24 * time.Hour

// Gateway drafts lesson plans and submission feedback. Drafts only
// pre-populate editable fields; the gateway never commits domain state.
type Gateway struct {
	router *Router
	cache  *cache.Cache // optional; lesson-plan drafts are cached by topic
}

// NewGateway creates a content-assist gateway. cache may be nil.
func NewGateway(router *Router, c *cache.Cache) *Gateway {
	if router == nil {
		router = NewRouter()
	}
	return &Gateway{router: router, cache: c}
}

// Available reports whether at least one provider is configured.
func (g *Gateway) Available() bool {
	return g.router.HasProvider()
}

// DraftLessonPlan produces formatted instructional text for the topic. It
// never returns an error: missing configuration and provider failures
// degrade to placeholder text.
func (g *Gateway) DraftLessonPlan(ctx context.Context, topic string) string {
	if !g.router.HasProvider() {
		return msgNotConfigured
	}

	if cached, ok := g.cachedDraft(ctx, topic); ok {
		slog.Debug("lesson plan served from cache", "topic", topic)
		return cached
	}

	prompt := fmt.Sprintf(`Create a structured lesson plan for a Fintech course on the topic: %q.
Include 3 learning objectives, a brief lecture outline, and one activity.
Format as HTML with <h3> for headers and <ul> for lists. Keep it concise.`, topic)

	resp, err := g.router.Complete(ctx, Request{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: 1024,
	})
	if err != nil {
		slog.Warn("lesson plan draft failed", "topic", topic, "error", err)
		return msgLessonPlanFailed
	}
	if resp.Content == "" {
		return msgNoLessonPlanOutput
	}

	g.storeDraft(ctx, topic, resp.Content)
	return resp.Content
}

// DraftFeedback produces short constructive feedback for a submission
// against the given rubric. Populates an editable field only; it does not
// grade. Never returns an error.
func (g *Gateway) DraftFeedback(ctx context.Context, submissionContent, rubric string) string {
	if !g.router.HasProvider() {
		return msgNotConfigured
	}

	prompt := fmt.Sprintf(`Act as a teaching assistant.
Student Submission: %q
Assignment Criteria: %q

Provide constructive feedback for the student in 2-3 sentences. Be encouraging but point out potential improvements.`,
		submissionContent, rubric)

	resp, err := g.router.Complete(ctx, Request{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: 512,
	})
	if err != nil {
		slog.Warn("feedback draft failed", "error", err)
		return msgFeedbackFailed
	}
	if resp.Content == "" {
		return msgNoFeedbackOutput
	}
	return resp.Content
}

func (g *Gateway) cachedDraft(ctx context.Context, topic string) (string, bool) {
	if g.cache == nil {
		return "", false
	}
	val, err := g.cache.Client.Get(ctx, draftCacheKey(topic)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (g *Gateway) storeDraft(ctx context.Context, topic, content string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Client.Set(ctx, draftCacheKey(topic), content, draftCacheTTL).Err(); err != nil {
		slog.Warn("failed to cache lesson plan draft", "topic", topic, "error", err)
	}
}

func draftCacheKey(topic string) string {
	return "assist:lessonplan:" + topic
}
