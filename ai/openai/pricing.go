package openai

// ModelPricing contains per-token pricing information
// Prices are in USD per million tokens
type ModelPricing struct {
	PromptPrice     float64 // USD per 1M prompt tokens
	CompletionPrice float64 // USD per 1M completion tokens
}

// modelPricing contains hardcoded pricing for common OpenAI models
// TODO: pull current pricing from the OpenAI pricing page at release time
var modelPricing = map[string]ModelPricing{
	"gpt-4o": {
		PromptPrice:     2.50,  // $2.50 per 1M prompt tokens
		CompletionPrice: 10.00, // $10.00 per 1M completion tokens
	},
	"gpt-4o-mini": {
		PromptPrice:     0.15, // $0.15 per 1M prompt tokens
		CompletionPrice: 0.60, // $0.60 per 1M completion tokens
	},
	"gpt-4.1": {
		PromptPrice:     2.00, // $2.00 per 1M prompt tokens
		CompletionPrice: 8.00, // $8.00 per 1M completion tokens
	},
	"gpt-4.1-mini": {
		PromptPrice:     0.40, // $0.40 per 1M prompt tokens
		CompletionPrice: 1.60, // $1.60 per 1M completion tokens
	},
	"gpt-4.1-nano": {
		PromptPrice:     0.10, // $0.10 per 1M prompt tokens
		CompletionPrice: 0.40, // $0.40 per 1M completion tokens
	},
	"gpt-4-turbo": {
		PromptPrice:     10.00, // $10.00 per 1M prompt tokens
		CompletionPrice: 30.00, // $30.00 per 1M completion tokens
	},
	"gpt-3.5-turbo": {
		PromptPrice:     0.50, // $0.50 per 1M prompt tokens
		CompletionPrice: 1.50, // $1.50 per 1M completion tokens
	},
	"o4-mini": {
		PromptPrice:     1.10, // $1.10 per 1M prompt tokens
		CompletionPrice: 4.40, // $4.40 per 1M completion tokens
	},
}

// DefaultPricingFallback is the fallback cost per request when model pricing is unknown
// Set to $0.01 (1 cent) per request as a conservative estimate
const DefaultPricingFallback = 0.01

// CalculateCost computes the cost of an API call based on token usage.
// Local inference is free regardless of model. Returns cost in USD.
func CalculateCost(provider, model string, promptTokens, completionTokens int) float64 {
	if provider == "local" {
		return 0
	}

	pricing, found := modelPricing[model]
	if !found {
		// Unknown model - use fallback pricing
		return DefaultPricingFallback
	}

	promptCost := (float64(promptTokens) / 1_000_000.0) * pricing.PromptPrice
	completionCost := (float64(completionTokens) / 1_000_000.0) * pricing.CompletionPrice

	return promptCost + completionCost
}

// GetPricing returns pricing information for a model, if available
func GetPricing(model string) (ModelPricing, bool) {
	pricing, found := modelPricing[model]
	return pricing, found
}
