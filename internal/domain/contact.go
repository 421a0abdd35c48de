package domain

import "time"

// Tariffs lists the offering names a lead may pick on the contact form
var Tariffs = []string{"Базовый", "Групповой", "Индивидуальный", "Консультация"}

// Contact status values set from the Telegram bot
const (
	ContactStatusProcessed = "processed"
	ContactStatusSpam      = "spam"
)

// Contact is one lead submitted through the contact form
type Contact struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Telegram     string     `json:"telegram"`
	Message      string     `json:"message"`
	Tariff       string     `json:"tariff,omitempty"`
	IP           string     `json:"ip"`
	CreatedAt    time.Time  `json:"createdAt"`
	Status       string     `json:"status,omitempty"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	MarkedSpamAt *time.Time `json:"markedSpamAt,omitempty"`
}

// ContactRequest is the body of POST /contact
type ContactRequest struct {
	Name     string `json:"name"`
	Telegram string `json:"telegram"`
	Message  string `json:"message"`
	Tariff   string `json:"tariff"`
}

// SubmissionMeta carries request facts that are not part of the form
type SubmissionMeta struct {
	IP       string
	AdminURL string
}

// ContactSummary is the lead overview sent back to the Telegram chat
type ContactSummary struct {
	Today  int
	Week   int
	Total  int
	Latest []Contact
}
