package repository

import (
	"context"

	"vx-landing/internal/domain"
)

// ContactRepository defines the interface for lead storage operations
type ContactRepository interface {
	// Contacts returns all contacts in insertion order
	Contacts(ctx context.Context) ([]domain.Contact, error)

	// SaveContacts replaces the whole collection
	SaveContacts(ctx context.Context, contacts []domain.Contact) error

	// UpdateContacts performs a serialized read-modify-write of the collection
	UpdateContacts(ctx context.Context, fn func([]domain.Contact) ([]domain.Contact, error)) error

	// ClearContacts backs the collection up and empties it, returning the backup path
	ClearContacts(ctx context.Context) (string, error)
}

// SpamRepository defines the interface for the spam archive
type SpamRepository interface {
	// SpamContacts returns archived spam contacts
	SpamContacts(ctx context.Context) ([]domain.Contact, error)

	// AppendSpam archives one contact
	AppendSpam(ctx context.Context, contact domain.Contact) error
}

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	// Settings returns the current settings
	Settings(ctx context.Context) (domain.Settings, error)

	// SaveSettings replaces the settings wholesale
	SaveSettings(ctx context.Context, settings domain.Settings) error

	// UpdateSettings performs a serialized read-modify-write of the settings
	UpdateSettings(ctx context.Context, fn func(*domain.Settings) error) (domain.Settings, error)
}

// AnalyticsRepository defines the interface for the analytics singleton
type AnalyticsRepository interface {
	// Analytics returns the current analytics document
	Analytics(ctx context.Context) (domain.Analytics, error)

	// UpdateAnalytics performs a serialized read-modify-write of the document
	UpdateAnalytics(ctx context.Context, fn func(*domain.Analytics) error) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Contacts  ContactRepository
	Spam      SpamRepository
	Settings  SettingsRepository
	Analytics AnalyticsRepository
}

// NewRepositories exposes one FileStore through every repository interface
func NewRepositories(store *FileStore) *Repositories {
	return &Repositories{
		Contacts:  store,
		Spam:      store,
		Settings:  store,
		Analytics: store,
	}
}
