package service

import (
	"context"
	stderrors "errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"vx-landing/internal/domain"
	"vx-landing/internal/repository"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/logger"
)

// Input limits
const (
	MaxFieldRunes   = 1000
	MinNameRunes    = 2
	MaxNameRunes    = 50
	MinMessageRunes = 10

	notifyTimeout = 15 * time.Second
	summaryLatest = 5
)

// Validation messages shown on the contact form
const (
	MsgNameRequired     = "Пожалуйста, укажите ваше имя."
	MsgTelegramRequired = "Пожалуйста, укажите ваш Telegram."
	MsgNameInvalid      = "Имя должно содержать от 2 до 50 символов и состоять только из букв."
	MsgTelegramInvalid  = "Telegram username должен содержать от 5 до 32 символов (буквы, цифры, подчеркивания)."
	MsgMessageTooShort  = "Сообщение слишком короткое. Напишите хотя бы 10 символов."
	MsgMessageTooLong   = "Сообщение слишком длинное. Максимум 1000 символов."
	MsgTariffInvalid    = "Выберите корректный тариф из списка."
	MsgContactSaveError = "Произошла техническая ошибка. Попробуйте отправить заявку через несколько минут."
	MsgContactNotFound  = "Заявка не найдена"
)

var (
	// Whitespace covers the Unicode space separators too, so names typed
	// with a no-break space are accepted.
	namePattern     = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}\-']+$`)
	telegramPattern = regexp.MustCompile(`^@?[a-zA-Z0-9_]{5,32}$`)

	// ErrContactNotFound is returned when no contact has the requested id
	ErrContactNotFound = stderrors.New("contact not found")
)

type contactService struct {
	contacts repository.ContactRepository
	spam     repository.SpamRepository
	notifier Notifier
	clock    Clock
	logger   *logger.Logger
}

// NewContactService creates a new contact service
func NewContactService(contacts repository.ContactRepository, spam repository.SpamRepository, notifier Notifier, clock Clock, logger *logger.Logger) ContactService {
	return &contactService{
		contacts: contacts,
		spam:     spam,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// Sanitize trims surrounding whitespace and caps s at MaxFieldRunes runes
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxFieldRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxFieldRunes])
}

// ValidateContact sanitizes req and checks it field by field, returning the
// first failure.
func ValidateContact(req domain.ContactRequest) (domain.ContactRequest, *errors.AppError) {
	clean := domain.ContactRequest{
		Name:     Sanitize(req.Name),
		Telegram: Sanitize(req.Telegram),
		Message:  Sanitize(req.Message),
		Tariff:   Sanitize(req.Tariff),
	}

	if clean.Name == "" {
		return clean, errors.NewValidationError(MsgNameRequired)
	}
	if clean.Telegram == "" {
		return clean, errors.NewValidationError(MsgTelegramRequired)
	}

	nameLen := utf8.RuneCountInString(clean.Name)
	if nameLen < MinNameRunes || nameLen > MaxNameRunes || !namePattern.MatchString(clean.Name) {
		return clean, errors.NewValidationError(MsgNameInvalid)
	}

	if !telegramPattern.MatchString(strings.Replace(clean.Telegram, "@", "", 1)) {
		return clean, errors.NewValidationError(MsgTelegramInvalid)
	}

	if clean.Message != "" {
		msgLen := utf8.RuneCountInString(clean.Message)
		if msgLen < MinMessageRunes {
			return clean, errors.NewValidationError(MsgMessageTooShort)
		}
		if msgLen > MaxFieldRunes {
			return clean, errors.NewValidationError(MsgMessageTooLong)
		}
	}

	if clean.Tariff != "" && !containsString(domain.Tariffs, clean.Tariff) {
		return clean, errors.NewValidationError(MsgTariffInvalid)
	}

	return clean, nil
}

// NewContactID combines the base-36 creation time in millis with a random
// suffix so leads created in the same millisecond stay distinct.
func NewContactID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Submit validates and stores a lead, then notifies staff. A failed
// notification is logged and never fails the submission.
func (s *contactService) Submit(ctx context.Context, req domain.ContactRequest, meta domain.SubmissionMeta) (*domain.Contact, error) {
	clean, appErr := ValidateContact(req)
	if appErr != nil {
		return nil, appErr
	}

	now := s.clock.now().UTC()
	contact := domain.Contact{
		ID:        NewContactID(now),
		Name:      clean.Name,
		Telegram:  clean.Telegram,
		Message:   clean.Message,
		Tariff:    clean.Tariff,
		IP:        meta.IP,
		CreatedAt: now,
	}

	err := s.contacts.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
		return append(contacts, contact), nil
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to save contact")
		return nil, errors.NewInternalError(MsgContactSaveError, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"contact_id": contact.ID,
		"tariff":     contact.Tariff,
		"ip":         contact.IP,
	}).Info("Contact stored")

	// The lead is already stored; the notification must not be cut short
	// when the client disconnects.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyContact(notifyCtx, contact, meta.AdminURL); err != nil {
		s.logger.WithError(err).WithField("contact_id", contact.ID).Error("Failed to send Telegram notification")
	}

	return &contact, nil
}

// Summary counts leads created today (UTC), during the last seven days and
// overall, and lists the newest ones.
func (s *contactService) Summary(ctx context.Context) (*domain.ContactSummary, error) {
	contacts, err := s.contacts.Contacts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.now().UTC()
	today, week := countRecent(contacts, now)

	latest := sortNewestFirst(contacts)
	if len(latest) > summaryLatest {
		latest = latest[:summaryLatest]
	}

	return &domain.ContactSummary{
		Today:  today,
		Week:   week,
		Total:  len(contacts),
		Latest: latest,
	}, nil
}

// MarkProcessed flags the lead as handled by staff
func (s *contactService) MarkProcessed(ctx context.Context, id string) (*domain.Contact, error) {
	var marked *domain.Contact
	err := s.contacts.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
		for i := range contacts {
			if contacts[i].ID == id {
				now := s.clock.now().UTC()
				contacts[i].Status = domain.ContactStatusProcessed
				contacts[i].ProcessedAt = &now
				c := contacts[i]
				marked = &c
				return contacts, nil
			}
		}
		return nil, ErrContactNotFound
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

// MarkSpam removes the lead from the contacts collection and archives it
// in the spam document.
func (s *contactService) MarkSpam(ctx context.Context, id string) (*domain.Contact, error) {
	var removed *domain.Contact
	err := s.contacts.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
		kept := make([]domain.Contact, 0, len(contacts))
		for _, c := range contacts {
			if c.ID == id && removed == nil {
				spam := c
				removed = &spam
				continue
			}
			kept = append(kept, c)
		}
		if removed == nil {
			return nil, ErrContactNotFound
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.now().UTC()
	removed.Status = domain.ContactStatusSpam
	removed.MarkedSpamAt = &now
	if err := s.spam.AppendSpam(ctx, *removed); err != nil {
		s.logger.WithError(err).WithField("contact_id", id).Error("Failed to archive spam contact")
		return removed, err
	}

	s.logger.WithField("contact_id", id).Info("Contact marked as spam")
	return removed, nil
}

// startOfDay returns midnight UTC of t's day
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// countRecent returns how many contacts were created today and since the
// start of the day seven days ago.
func countRecent(contacts []domain.Contact, now time.Time) (today, week int) {
	dayStart := startOfDay(now)
	weekStart := startOfDay(now.Add(-7 * 24 * time.Hour))
	for _, c := range contacts {
		created := c.CreatedAt.UTC()
		if !created.Before(dayStart) {
			today++
		}
		if !created.Before(weekStart) {
			week++
		}
	}
	return today, week
}

func sortNewestFirst(contacts []domain.Contact) []domain.Contact {
	sorted := append([]domain.Contact(nil), contacts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if sorted == nil {
		sorted = []domain.Contact{}
	}
	return sorted
}
