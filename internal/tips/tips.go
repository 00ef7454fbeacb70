package tips

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tahcohcat/calmkid/internal/llm"
	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
)

const MaxPersonalised = 3

type Tip struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Set is what the parent tips view shows. Personalised is false when the
// static tips were used.
type Set struct {
	Tips         []Tip `json:"tips"`
	Personalised bool  `json:"personalised"`
}

var static = []Tip{
	{Title: "Handling Aggression", Body: "Stay calm. Your child mirrors your emotions. Take a deep breath before responding."},
	{Title: "Anxiety Relief", Body: "Create a worry box. Let your child write down worries and put them away."},
	{Title: "Improving Focus", Body: "Break tasks into small chunks. Use a timer for short focus bursts."},
}

// Static returns a copy of the built-in tips.
func Static() []Tip {
	return append([]Tip(nil), static...)
}

type Advisor struct {
	llm llm.LLM
	log *logger.Log
}

// NewAdvisor works with a nil client and then only serves static tips.
func NewAdvisor(client llm.LLM) *Advisor {
	return &Advisor{llm: client, log: logger.New()}
}

const systemPrompt = `You are a gentle, practical parenting coach for children aged 4 to 12.
You give short, concrete, non-clinical advice. Never diagnose.
You MUST respond in valid JSON only, in this EXACT structure:
{"tips": [{"title": "short title", "body": "one or two sentences"}]}
Do NOT include any text before or after the JSON.`

// Personalised asks the model for tips based on the weekly report and falls
// back to the static tips on any failure.
func (a *Advisor) Personalised(ctx context.Context, report *models.Report) Set {
	if a.llm == nil || report == nil {
		return Set{Tips: Static()}
	}

	resp, err := a.llm.GenerateResponse(ctx, systemPrompt, describe(report))
	if err != nil {
		a.log.WithUser(report.UserID).WithError(err).Warn("could not generate tips")
		return Set{Tips: Static()}
	}

	tips, err := parse(resp)
	if err != nil {
		a.log.WithUser(report.UserID).Warn(fmt.Sprintf("failed to parse tips. [response:%s]", resp))
		return Set{Tips: Static()}
	}
	return Set{Tips: tips, Personalised: true}
}

func describe(r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is my child's last %d days.\n", len(r.Days))
	for _, d := range r.Days {
		var parts []string
		for _, m := range models.Moods {
			if n := d.Counts[m]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s x%d", m, n))
			}
		}
		if len(parts) == 0 {
			parts = append(parts, "no mood logged")
		}
		fmt.Fprintf(&b, "- %s: %s\n", d.Date, strings.Join(parts, ", "))
	}
	if r.DominantMood != "" {
		fmt.Fprintf(&b, "Most common mood: %s\n", r.DominantMood)
	}
	if r.TopTrigger != "" {
		fmt.Fprintf(&b, "Most common trigger: %s\n", r.TopTrigger)
	}
	fmt.Fprintf(&b, "Calming activities finished: %d. Stars earned: %d. Challenges done: %.0f%%.\n",
		r.ActivitiesFinished, r.StarsEarned, r.ChallengeProgress*100)
	fmt.Fprintf(&b, "Give me up to %d tips for the coming week.", MaxPersonalised)
	return b.String()
}

// parse accepts the JSON object alone or embedded in surrounding text.
func parse(resp string) ([]Tip, error) {
	var out struct {
		Tips []Tip `json:"tips"`
	}
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		start := strings.Index(resp, "{")
		end := strings.LastIndex(resp, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no valid JSON found in response")
		}
		if err := json.Unmarshal([]byte(resp[start:end+1]), &out); err != nil {
			return nil, err
		}
	}

	tips := make([]Tip, 0, MaxPersonalised)
	for _, t := range out.Tips {
		t.Title = strings.TrimSpace(t.Title)
		t.Body = strings.TrimSpace(t.Body)
		if t.Title == "" || t.Body == "" {
			continue
		}
		tips = append(tips, t)
		if len(tips) == MaxPersonalised {
			break
		}
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("no usable tips in response")
	}
	return tips, nil
}
