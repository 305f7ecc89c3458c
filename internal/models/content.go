package models

import "time"

// ContentSection is a CMS-managed block of the storefront (FAQ, About, footer).
type ContentSection struct {
	Key       string         `json:"key" bson:"_id"`
	Title     string         `json:"title" bson:"title"`
	Body      string         `json:"body,omitempty" bson:"body,omitempty"`
	FAQs      []FAQItem      `json:"faqs,omitempty" bson:"faqs,omitempty"`
	Links     []FooterLink   `json:"links,omitempty" bson:"links,omitempty"`
	Extra     map[string]any `json:"extra,omitempty" bson:"extra,omitempty"`
	UpdatedBy string         `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type FAQItem struct {
	Question string `json:"question" bson:"question" binding:"required"`
	Answer   string `json:"answer" bson:"answer" binding:"required"`
}

type FooterLink struct {
	Group string `json:"group,omitempty" bson:"group,omitempty"`
	Label string `json:"label" bson:"label" binding:"required"`
	URL   string `json:"url" bson:"url" binding:"required"`
}
