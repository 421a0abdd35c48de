package service

import (
	"context"

	"vx-landing/internal/domain"
)

// AuthService defines the interface for admin session operations
type AuthService interface {
	// Login checks admin credentials and returns a signed session token
	Login(ctx context.Context, username, password string) (string, error)

	// VerifyToken validates a session token and returns the admin it belongs to
	VerifyToken(ctx context.Context, token string) (*domain.AdminUser, error)
}

// Notifier delivers lead events to the school's staff. Implementations must
// be safe for concurrent use.
type Notifier interface {
	// NotifyContact announces a newly stored lead
	NotifyContact(ctx context.Context, contact domain.Contact, adminURL string) error

	// ShowContactsSummary replaces a notification with lead statistics
	ShowContactsSummary(ctx context.Context, chatID int64, messageID int, summary domain.ContactSummary, adminURL string) error

	// MarkMessage replaces a notification's actions with a single status label
	MarkMessage(ctx context.Context, chatID int64, messageID int, label, callback string) error
}

// ContactService defines the interface for lead intake operations
type ContactService interface {
	// Submit validates and stores a contact form submission, then notifies staff
	Submit(ctx context.Context, req domain.ContactRequest, meta domain.SubmissionMeta) (*domain.Contact, error)

	// Summary returns lead counts and the latest leads
	Summary(ctx context.Context) (*domain.ContactSummary, error)

	// MarkProcessed flags a lead as handled
	MarkProcessed(ctx context.Context, id string) (*domain.Contact, error)

	// MarkSpam moves a lead from the contacts collection to the spam archive
	MarkSpam(ctx context.Context, id string) (*domain.Contact, error)
}

// AnalyticsService defines the interface for visit statistics
type AnalyticsService interface {
	// TrackVisit counts a landing page view once per visitor per day
	TrackVisit(ctx context.Context, visit domain.VisitRequest) error

	// Report returns visits within range ("today", "week", "month") and top sources
	Report(ctx context.Context, rangeName string) (*domain.AnalyticsReport, error)

	// TodayVisits returns the unique visits counted today
	TodayVisits(ctx context.Context) (int, error)
}

// AdminService defines the interface for admin panel operations
type AdminService interface {
	// Dashboard aggregates lead counts, today's visits and the settings
	Dashboard(ctx context.Context) (*domain.Dashboard, error)

	// ListContacts returns all leads, newest first
	ListContacts(ctx context.Context) ([]domain.Contact, error)

	// DeleteContact removes one lead and returns it
	DeleteContact(ctx context.Context, id string) (*domain.Contact, error)

	// ClearContacts backs up and removes every lead, returning the backup path
	ClearContacts(ctx context.Context) (string, error)

	// Settings returns the full settings document
	Settings(ctx context.Context) (*domain.Settings, error)

	// SaveSettings replaces the settings document
	SaveSettings(ctx context.Context, settings domain.Settings) error

	// ToggleDiscount flips discountEnabled and returns the new value
	ToggleDiscount(ctx context.Context) (bool, error)

	// TogglePackage flips one package's availability and returns the new value
	TogglePackage(ctx context.Context, pkg string) (bool, error)

	// PublicSettings returns the subset of settings shown on the landing page
	PublicSettings(ctx context.Context) (*domain.PublicSettings, error)
}

// Services aggregates all service interfaces
type Services struct {
	Auth      AuthService
	Contact   ContactService
	Analytics AnalyticsService
	Admin     AdminService
	Notifier  Notifier
}
