// Package advisor is the adapter for the remote AI advisory service. It
// renders read-only training summaries into prompts and decodes the
// service's JSON replies into strict schemas. All textual cleanup of model
// output (markdown fences and the like) lives here; nothing downstream ever
// sees raw model text.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/replog/internal/analytics"
	openai "github.com/sashabaranov/go-openai"
)

// RoutinePlan is the routine-shape reply schema.
type RoutinePlan struct {
	RoutineName string         `json:"routineName"`
	Exercises   []PlanExercise `json:"exercises"`
}

// PlanExercise is one exercise slot of a generated routine.
type PlanExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps int    `json:"reps"`
	Note string `json:"note,omitempty"`
}

// WeekSchedule is the weekly-schedule reply schema.
type WeekSchedule struct {
	WeekFocus string        `json:"weekFocus"`
	Days      []ScheduleDay `json:"days"`
}

// ScheduleDay is one day of a generated week schedule.
type ScheduleDay struct {
	Day         string `json:"day"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
}

// Client calls an OpenAI-compatible completion endpoint. The last good
// reply of each shape is cached; a failed call never overwrites it.
type Client struct {
	api   *openai.Client
	model string
	log   *slog.Logger

	mu           sync.Mutex
	lastRoutine  *RoutinePlan
	lastSchedule *WeekSchedule
}

// NewClient creates a Client for the given endpoint. baseURL may be empty
// for the default OpenAI endpoint.
func NewClient(baseURL, apiKey, model string, log *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		log:   log,
	}
}

const routineSystemPrompt = `You are a strength coach. Reply with a single JSON object and nothing else:
{"routineName": string, "exercises": [{"name": string, "sets": int, "reps": int, "note": string}]}`

const scheduleSystemPrompt = `You are a strength coach planning a training week. Reply with a single JSON object and nothing else:
{"weekFocus": string, "days": [{"day": string, "focus": string, "description": string}]}`

// SuggestRoutine asks the advisory service for a routine shaped around the
// given training profile.
func (c *Client) SuggestRoutine(ctx context.Context, profile analytics.TrainingProfile, request string) (*RoutinePlan, error) {
	prompt := profile.Describe()
	if request != "" {
		prompt += "\nRequest: " + request
	}

	raw, err := c.complete(ctx, routineSystemPrompt, prompt)
	if err != nil {
		return c.routineFallback(err)
	}

	var plan RoutinePlan
	if err := decodeStrict(raw, &plan); err != nil {
		return c.routineFallback(err)
	}
	if plan.RoutineName == "" || len(plan.Exercises) == 0 {
		return c.routineFallback(fmt.Errorf("advisory reply missing routine fields"))
	}
	for i, ex := range plan.Exercises {
		if ex.Name == "" {
			return c.routineFallback(fmt.Errorf("advisory reply exercise %d has no name", i))
		}
	}

	c.mu.Lock()
	c.lastRoutine = &plan
	c.mu.Unlock()
	return &plan, nil
}

// SuggestSchedule asks the advisory service for a weekly schedule.
func (c *Client) SuggestSchedule(ctx context.Context, profile analytics.TrainingProfile, request string) (*WeekSchedule, error) {
	prompt := profile.Describe()
	if request != "" {
		prompt += "\nRequest: " + request
	}

	raw, err := c.complete(ctx, scheduleSystemPrompt, prompt)
	if err != nil {
		return c.scheduleFallback(err)
	}

	var sched WeekSchedule
	if err := decodeStrict(raw, &sched); err != nil {
		return c.scheduleFallback(err)
	}
	if len(sched.Days) == 0 {
		return c.scheduleFallback(fmt.Errorf("advisory reply has no days"))
	}

	c.mu.Lock()
	c.lastSchedule = &sched
	c.mu.Unlock()
	return &sched, nil
}

// LastRoutine returns the cached routine reply, if any.
func (c *Client) LastRoutine() *RoutinePlan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRoutine
}

// LastSchedule returns the cached schedule reply, if any.
func (c *Client) LastSchedule() *WeekSchedule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSchedule
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("advisory call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("advisory call: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// routineFallback implements the failure policy: a rate-limited call falls
// back to the cached reply silently; any other failure surfaces (the cache
// is still preserved for later reads).
func (c *Client) routineFallback(err error) (*RoutinePlan, error) {
	c.mu.Lock()
	cached := c.lastRoutine
	c.mu.Unlock()

	if isRateLimit(err) && cached != nil {
		c.log.Warn("advisory rate limited, serving cached routine", "error", err)
		return cached, nil
	}
	return nil, err
}

func (c *Client) scheduleFallback(err error) (*WeekSchedule, error) {
	c.mu.Lock()
	cached := c.lastSchedule
	c.mu.Unlock()

	if isRateLimit(err) && cached != nil {
		c.log.Warn("advisory rate limited, serving cached schedule", "error", err)
		return cached, nil
	}
	return nil, err
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// decodeStrict strips any markdown code fences and decodes into the given
// schema, failing on malformed JSON.
func decodeStrict(raw string, v any) error {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("decoding advisory reply: %w", err)
	}
	return nil
}
