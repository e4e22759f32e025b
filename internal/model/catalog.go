package model

import "time"

// Fixed palettes the catalog enumerates over. Goods store subsets of these;
// the validator rejects anything outside them.
var (
	Colors  = []string{"white", "black", "grey", "blue", "green", "red", "pastel"}
	Sizes   = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL"}
	Genders = []string{"men", "women", "unisex"}
)

// PriceCurrency is the single currency the store trades in.
const PriceCurrency = "грн"

// Category mirrors the `categories` table. Categories are managed outside
// this service; only reads happen here.
type Category struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Price is the value/currency pair embedded in a good.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Good is a sellable product joined with its category and feedback
// aggregates. Stars and FeedbacksCount are derived at query time, never
// stored.
type Good struct {
	ID              uint64       `json:"id"`
	Name            string       `json:"name"`
	Image           string       `json:"image"`
	Category        GoodCategory `json:"category"`
	PrevDescription string       `json:"prevDescription"`
	Description     string       `json:"description"`
	Colors          []string     `json:"colors"`
	Sizes           []string     `json:"sizes"`
	Gender          string       `json:"gender"`
	Price           Price        `json:"price"`
	Characteristics []string     `json:"characteristics"`
	Stars           float64      `json:"stars"`
	FeedbacksCount  int          `json:"feedbacksCount"`
	Feedbacks       []Feedback   `json:"feedbacks,omitempty"`
}

// GoodCategory is the category projection embedded in a good.
type GoodCategory struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Feedback mirrors the `feedbacks` table. Immutable once created.
type Feedback struct {
	ID          uint64       `json:"id"`
	Author      string       `json:"author"`
	Date        string       `json:"date"` // calendar day, YYYY-MM-DD
	Description string       `json:"description"`
	Rate        float64      `json:"rate"` // half steps, 1.0–5.0
	Good        FeedbackGood `json:"goodId"`
}

// FeedbackGood is the good projection embedded in a feedback.
type FeedbackGood struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
