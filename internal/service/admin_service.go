package service

import (
	"context"
	stderrors "errors"

	"vx-landing/internal/domain"
	"vx-landing/internal/repository"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/logger"
)

// MsgUnknownPackage is returned when toggling a package that does not exist
const MsgUnknownPackage = "Неизвестный пакет"

type adminService struct {
	contacts  repository.ContactRepository
	settings  repository.SettingsRepository
	analytics AnalyticsService
	clock     Clock
	logger    *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(contacts repository.ContactRepository, settings repository.SettingsRepository, analytics AnalyticsService, clock Clock, logger *logger.Logger) AdminService {
	return &adminService{
		contacts:  contacts,
		settings:  settings,
		analytics: analytics,
		clock:     clock,
		logger:    logger,
	}
}

// Dashboard aggregates lead counts, today's visits and the settings
func (s *adminService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	contacts, err := s.contacts.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := s.analytics.TodayVisits(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}

	today, week := countRecent(contacts, s.clock.now().UTC())
	return &domain.Dashboard{
		TotalContacts: len(contacts),
		TodayContacts: today,
		WeekContacts:  week,
		TodayVisits:   visits,
		Settings:      settings,
	}, nil
}

// ListContacts returns every lead, newest first
func (s *adminService) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := s.contacts.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	return sortNewestFirst(contacts), nil
}

// DeleteContact removes one lead by id
func (s *adminService) DeleteContact(ctx context.Context, id string) (*domain.Contact, error) {
	var deleted *domain.Contact
	err := s.contacts.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
		for i := range contacts {
			if contacts[i].ID == id {
				c := contacts[i]
				deleted = &c
				return append(contacts[:i], contacts[i+1:]...), nil
			}
		}
		return nil, ErrContactNotFound
	})
	if stderrors.Is(err, ErrContactNotFound) {
		return nil, errors.NewNotFoundError(MsgContactNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"contact_id": deleted.ID,
		"telegram":   deleted.Telegram,
	}).Info("Admin deleted contact")
	return deleted, nil
}

// ClearContacts backs up and empties the contacts collection
func (s *adminService) ClearContacts(ctx context.Context) (string, error) {
	backup, err := s.contacts.ClearContacts(ctx)
	if err != nil {
		return "", err
	}
	s.logger.WithField("backup", backup).Info("Admin cleared all contacts")
	return backup, nil
}

// Settings returns the full settings document
func (s *adminService) Settings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings replaces the settings document wholesale. Keys absent from the
// posted document stay absent when it is read back.
func (s *adminService) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.logger.Info("Settings saved")
	return nil
}

// ToggleDiscount flips discountEnabled
func (s *adminService) ToggleDiscount(ctx context.Context) (bool, error) {
	settings, err := s.settings.UpdateSettings(ctx, func(st *domain.Settings) error {
		st.ToggleDiscount()
		return nil
	})
	if err != nil {
		return false, err
	}
	return settings.DiscountEnabled, nil
}

// TogglePackage flips the availability flag of pkg
func (s *adminService) TogglePackage(ctx context.Context, pkg string) (bool, error) {
	var value bool
	_, err := s.settings.UpdateSettings(ctx, func(st *domain.Settings) error {
		toggled, ok := st.TogglePackage(pkg)
		if !ok {
			return errors.NewValidationError(MsgUnknownPackage)
		}
		value = toggled
		return nil
	})
	if err != nil {
		return false, err
	}
	return value, nil
}

// PublicSettings returns the landing page subset of the settings
func (s *adminService) PublicSettings(ctx context.Context) (*domain.PublicSettings, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	public := settings.Public()
	return &public, nil
}
