// Package anthropic implements an optional oracle.Oracle backed by the
// Anthropic Messages API. It is never selected by default — only wired in
// when configuration explicitly names this backend, since it requires an
// API key and network access the core's Non-goals exclude from the default
// deployment.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/goccy/go-json"

	"github.com/marcus-ai/marcus/internal/port/oracle"
)

type Oracle struct {
	client anthropic.Client
	model  anthropic.Model
}

func New(apiKey string, model string) *Oracle {
	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}
	return &Oracle{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

type pairVerdict struct {
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// InferPairs asks the model to classify the dependency direction of every
// pair in the batch in a single call, and expects a JSON array response —
// one verdict per input pair, in the same order.
func (o *Oracle) InferPairs(ctx context.Context, batch []oracle.PairQuery) ([]oracle.PairResult, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	prompt, err := buildPairPrompt(batch)
	if err != nil {
		return nil, fmt.Errorf("anthropic oracle: build prompt: %w", err)
	}

	msg, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic oracle: infer pairs: %w", err)
	}

	var verdicts []pairVerdict
	if err := json.Unmarshal([]byte(responseText(msg)), &verdicts); err != nil {
		return nil, fmt.Errorf("anthropic oracle: parse response: %w", err)
	}
	if len(verdicts) != len(batch) {
		return nil, fmt.Errorf("anthropic oracle: expected %d verdicts, got %d", len(batch), len(verdicts))
	}

	out := make([]oracle.PairResult, len(batch))
	for i, q := range batch {
		out[i] = oracle.PairResult{
			TaskAID:    q.TaskAID,
			TaskBID:    q.TaskBID,
			Direction:  oracle.Direction(verdicts[i].Direction),
			Confidence: verdicts[i].Confidence,
			Reasoning:  verdicts[i].Reasoning,
		}
	}
	return out, nil
}

type scoreVerdict struct {
	SuccessProbability float64 `json:"success_probability"`
	Risk               float64 `json:"risk"`
	ExpectedHours      float64 `json:"expected_hours"`
}

func (o *Oracle) ScoreTaskForAgent(ctx context.Context, agent oracle.AgentProfile, t oracle.TaskSummary) (oracle.Score, error) {
	prompt := buildScorePrompt(agent, t)

	msg, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return oracle.Score{}, fmt.Errorf("anthropic oracle: score task: %w", err)
	}

	var v scoreVerdict
	if err := json.Unmarshal([]byte(responseText(msg)), &v); err != nil {
		return oracle.Score{}, fmt.Errorf("anthropic oracle: parse response: %w", err)
	}
	return oracle.Score{
		SuccessProbability: v.SuccessProbability,
		Risk:               v.Risk,
		ExpectedHours:      v.ExpectedHours,
	}, nil
}

func buildPairPrompt(batch []oracle.PairQuery) (string, error) {
	encoded, err := json.Marshal(batch)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("For each task pair below, decide whether task A depends on task B, task B depends on task A, or neither. ")
	b.WriteString("Respond with a JSON array of objects {direction: \"a->b\"|\"b->a\"|\"none\", confidence: 0..1, reasoning: string}, one per pair, same order, no other text.\n\n")
	b.Write(encoded)
	return b.String(), nil
}

func buildScorePrompt(agent oracle.AgentProfile, t oracle.TaskSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent skills: %v, performance score: %.2f, completed: %d, failed: %d.\n",
		agent.Skills, agent.PerformanceScore, agent.Completed, agent.Failed)
	fmt.Fprintf(&b, "Task: %s — %s. Labels: %v.\n", t.Name, t.Description, t.Labels)
	b.WriteString("Estimate this agent's chance of completing this task successfully. Respond with JSON only: ")
	b.WriteString(`{"success_probability": 0..1, "risk": 0..1, "expected_hours": number}`)
	return b.String()
}

func responseText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

var _ oracle.Oracle = (*Oracle)(nil)
