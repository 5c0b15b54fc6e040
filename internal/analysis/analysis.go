// Package analysis extracts item details from photos using the Gemini API.
// Analysis is best effort: Analyze always returns a usable result, falling
// back to task defaults when the service or its answer is unusable.
package analysis

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoAPIKey is returned when analysis is requested without a credential.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// Task selects what to extract from a photo.
type Task string

const (
	TaskProduct   Task = "product"
	TaskExpiry    Task = "expiry"
	TaskNutrition Task = "nutrition"
)

// ParseTask validates a task name.
func ParseTask(s string) (Task, error) {
	switch t := Task(s); t {
	case TaskProduct, TaskExpiry, TaskNutrition:
		return t, nil
	}
	return "", fmt.Errorf("unknown analysis task %q", s)
}

// Result holds the fields a task can fill in. Fallback is set when the
// values are defaults rather than extracted.
type Result struct {
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	PurchaseDate   string `json:"purchaseDate,omitempty"`
	NutritionFacts string `json:"nutritionFacts,omitempty"`
	Ingredients    string `json:"ingredients,omitempty"`
	Fallback       bool   `json:"fallback"`
}

// Default returns the result used when analysis fails.
func Default(task Task, now time.Time) Result {
	switch task {
	case TaskProduct:
		return Result{
			Name:        "Unknown Product",
			Description: "Could not analyze product image",
			Category:    "Other",
			Fallback:    true,
		}
	case TaskExpiry:
		today := now.Format("2006-01-02")
		return Result{ExpiryDate: today, PurchaseDate: today, Fallback: true}
	default:
		return Result{Fallback: true}
	}
}

func prompt(task Task, today string) string {
	switch task {
	case TaskProduct:
		return `Analyze this product image and extract the following information:
1. Product name
2. Product description (brief)
3. Product category (e.g., Dairy, Meat, Vegetables, Fruits, Beverages, Snacks, Canned Goods, etc.)

IMPORTANT: Return ONLY a valid JSON object with no additional text, comments, or explanations.
The JSON must have the following format:
{"name": "Product Name", "description": "Product Description", "category": "Product Category"}

Do not include any markdown formatting or code blocks.`
	case TaskExpiry:
		return fmt.Sprintf(`Look at this image of a product expiry date and extract the expiry date
(best before date, use by date, or expiration date).

IMPORTANT: Return ONLY a valid JSON object with no additional text, comments, or explanations.
The JSON must have the following format:
{"expiryDate": "YYYY-MM-DD", "purchaseDate": "%s"}

If you can't determine the exact date, make your best guess based on visible information.
Do not include any markdown formatting or code blocks.`, today)
	default:
		return `Look at this image of a product label and extract:
1. The nutrition facts, as a short plain text summary
2. The ingredients list, as plain text

IMPORTANT: Return ONLY a valid JSON object with no additional text, comments, or explanations.
The JSON must have the following format:
{"nutritionFacts": "...", "ingredients": "..."}

Use an empty string for anything that is not visible.
Do not include any markdown formatting or code blocks.`
	}
}

func temperature(task Task) float64 {
	if task == TaskExpiry {
		return 0.2
	}
	return 0.4
}
