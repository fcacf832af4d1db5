// README: Gemini-backed price-per-day suggestions for owners. Advisory only;
// the booking path never calls this.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"roam/internal/modules/vehicle"
	"roam/internal/types"
)

// Suggestion is the structured answer parsed from the model output.
type Suggestion struct {
	PerDayCents int64  `json:"per_day_cents"`
	Currency    string `json:"currency"`
	Rationale   string `json:"rationale"`
}

type Advisor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// New initializes the Gemini client. apiKey comes from configuration.
func New(ctx context.Context, apiKey string) (*Advisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	// Force JSON so the response parses without prose stripping.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &Advisor{client: client, model: model}, nil
}

func (a *Advisor) Close() {
	a.client.Close()
}

// SuggestRate asks the model for a competitive daily rate given the vehicle
// attributes and recent accepted quotes (in cents) for comparable vehicles.
func (a *Advisor) SuggestRate(ctx context.Context, v *vehicle.Vehicle, comparableRates []types.Money) (*Suggestion, error) {
	prompt := buildPrompt(v, comparableRates)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	var out Suggestion
	if err := json.Unmarshal([]byte(cleanJSON(text.String())), &out); err != nil {
		return nil, fmt.Errorf("parse suggestion: %w", err)
	}
	if out.PerDayCents <= 0 {
		return nil, fmt.Errorf("model suggested a non-positive rate %d", out.PerDayCents)
	}
	if out.Currency == "" {
		out.Currency = v.PricePerDay.Currency
	}
	return &out, nil
}

func buildPrompt(v *vehicle.Vehicle, comparableRates []types.Money) string {
	var rates []string
	for _, r := range comparableRates {
		rates = append(rates, r.String())
	}
	comparables := "NONE"
	if len(rates) > 0 {
		comparables = strings.Join(rates, ", ")
	}

	return fmt.Sprintf(`Role: You are the pricing assistant for "Roam", a peer-to-peer vehicle rental marketplace.
Vehicle: %d %s %s, current rate %s per day.
Comparable daily rates recently quoted on the platform: %s.

Suggest one competitive price-per-day for this vehicle.
Respond with JSON only, exactly this shape:
{"per_day_cents": <integer, minor currency units>, "currency": "<ISO code>", "rationale": "<one sentence>"}`,
		v.Year, v.Make, v.Model, v.PricePerDay, comparables)
}

// cleanJSON strips markdown fences the model occasionally wraps around its
// output despite JSON mode.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
