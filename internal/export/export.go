// Package export reads and writes the portable item document
// {"items": [...]}.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erazemk/bestbefore/internal/model"
)

// ErrInvalidDocument is returned when an import document is malformed. No
// items are imported from such a document.
var ErrInvalidDocument = errors.New("invalid import document")

// PlaceholderImageURI is used for imported items without an image.
const PlaceholderImageURI = "https://via.placeholder.com/300"

// MaxDocumentSize bounds how much is read from an import.
const MaxDocumentSize = 32 << 20

// Document is the export file layout.
type Document struct {
	Items []model.Item `json:"items"`
}

// FileName returns the suggested name for an export taken at now.
func FileName(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "best-before-export-" + stamp + ".json"
}

// Write encodes items as an indented document.
func Write(w io.Writer, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Items: items}); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

type importItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	ExpiryDate     string `json:"expiryDate"`
	PurchaseDate   string `json:"purchaseDate"`
	ImageURI       string `json:"imageUri"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	NutritionFacts string `json:"nutritionFacts"`
	Ingredients    string `json:"ingredients"`
}

// Read decodes and validates a document. Every item needs an id, a name and
// an expiry date; missing optional fields are filled with defaults based on
// now. Any invalid item rejects the whole document.
func Read(r io.Reader, now time.Time) ([]model.Item, error) {
	var doc struct {
		Items *[]importItem `json:"items"`
	}
	dec := json.NewDecoder(io.LimitReader(r, MaxDocumentSize))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Items == nil {
		return nil, fmt.Errorf("%w: expected an object with an \"items\" array", ErrInvalidDocument)
	}

	items := make([]model.Item, 0, len(*doc.Items))
	seen := make(map[string]bool, len(*doc.Items))
	for i, in := range *doc.Items {
		if in.ID == "" || in.Name == "" || in.ExpiryDate == "" {
			return nil, fmt.Errorf("%w: item %d is missing id, name or expiryDate", ErrInvalidDocument, i)
		}
		if seen[in.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidDocument, in.ID)
		}
		seen[in.ID] = true

		created, err := timestamp(in.CreatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d createdAt: %v", ErrInvalidDocument, i, err)
		}
		updated, err := timestamp(in.UpdatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d updatedAt: %v", ErrInvalidDocument, i, err)
		}
		// createdAt never follows updatedAt.
		if in.CreatedAt == "" && updated.Before(created) {
			created = updated
		}
		if updated.Before(created) {
			updated = created
		}

		it := model.Item{
			ID:             in.ID,
			Name:           in.Name,
			Description:    in.Description,
			Category:       in.Category,
			ExpiryDate:     in.ExpiryDate,
			PurchaseDate:   in.PurchaseDate,
			ImageURI:       in.ImageURI,
			CreatedAt:      created,
			UpdatedAt:      updated,
			NutritionFacts: in.NutritionFacts,
			Ingredients:    in.Ingredients,
		}
		if it.PurchaseDate == "" {
			it.PurchaseDate = now.UTC().Format(time.RFC3339)
		}
		if it.ImageURI == "" {
			it.ImageURI = PlaceholderImageURI
		}
		items = append(items, it)
	}
	return items, nil
}

func timestamp(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
