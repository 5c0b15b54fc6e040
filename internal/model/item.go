package model

import "time"

// Item is a tracked perishable product.
type Item struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	ExpiryDate     string    `json:"expiryDate"`
	PurchaseDate   string    `json:"purchaseDate"`
	ImageURI       string    `json:"imageUri"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	NutritionFacts string    `json:"nutritionFacts,omitempty"`
	Ingredients    string    `json:"ingredients,omitempty"`
}

// ItemFormData is the caller-supplied part of an item. The store assigns the
// id and both timestamps.
type ItemFormData struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	ExpiryDate     string `json:"expiryDate"`
	PurchaseDate   string `json:"purchaseDate"`
	ImageURI       string `json:"imageUri"`
	NutritionFacts string `json:"nutritionFacts,omitempty"`
	Ingredients    string `json:"ingredients,omitempty"`
}

// ItemPatch is a partial update. Nil fields are left unchanged.
type ItemPatch struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	ExpiryDate     *string `json:"expiryDate,omitempty"`
	PurchaseDate   *string `json:"purchaseDate,omitempty"`
	ImageURI       *string `json:"imageUri,omitempty"`
	NutritionFacts *string `json:"nutritionFacts,omitempty"`
	Ingredients    *string `json:"ingredients,omitempty"`
}

// Apply merges the non-nil fields of p onto item.
func (p ItemPatch) Apply(item *Item) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&item.Name, p.Name)
	set(&item.Description, p.Description)
	set(&item.Category, p.Category)
	set(&item.ExpiryDate, p.ExpiryDate)
	set(&item.PurchaseDate, p.PurchaseDate)
	set(&item.ImageURI, p.ImageURI)
	set(&item.NutritionFacts, p.NutritionFacts)
	set(&item.Ingredients, p.Ingredients)
}

// NewItem builds an item from form data with the given id and creation time.
func NewItem(id string, data ItemFormData, now time.Time) Item {
	return Item{
		ID:             id,
		Name:           data.Name,
		Description:    data.Description,
		Category:       data.Category,
		ExpiryDate:     data.ExpiryDate,
		PurchaseDate:   data.PurchaseDate,
		ImageURI:       data.ImageURI,
		NutritionFacts: data.NutritionFacts,
		Ingredients:    data.Ingredients,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
