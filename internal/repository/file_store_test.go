package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vx-landing/internal/domain"
	"vx-landing/pkg/logger"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return store
}

func TestFileStore_DefaultsOnFirstAccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contacts, err := store.Contacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.NotNil(t, contacts)

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)

	analytics, err := store.Analytics(ctx)
	require.NoError(t, err)
	assert.Empty(t, analytics.Visits)
	assert.Empty(t, analytics.Sources)
	assert.NotNil(t, analytics.UniqueVisitors)

	for _, kind := range []Kind{KindContacts, KindSettings, KindAnalytics} {
		_, err := os.Stat(store.Path(kind))
		assert.NoError(t, err, "default %s should be persisted", kind)
	}

	data, err := os.ReadFile(store.Path(KindContacts))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_MalformedDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(store.Path(KindSettings), []byte("{not json"), 0o644))

	_, err := store.Settings(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	_, err = store.UpdateSettings(ctx, func(s *domain.Settings) error {
		s.DiscountEnabled = true
		return nil
	})
	assert.True(t, errors.Is(err, ErrParse))

	data, err := os.ReadFile(store.Path(KindSettings))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "a failed update must not overwrite the document")
}

func TestFileStore_SettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	raw := `{
		"discountEnabled": true,
		"discountPercent": 15,
		"discountText": "Весна",
		"basicAvailable": false,
		"groupAvailable": true,
		"individualAvailable": true,
		"consultationAvailable": false,
		"basicPrice": 9000,
		"groupPrice": 25000,
		"individualPrice": "По запросу",
		"contactTelegram": "@vxschool",
		"contactEmail": "hi@vxschool.com",
		"heroTitle": "Новый набор"
	}`
	var settings domain.Settings
	require.NoError(t, json.Unmarshal([]byte(raw), &settings))
	require.NoError(t, store.SaveSettings(ctx, settings))

	got, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.DiscountPercent, got.DiscountPercent)
	assert.Equal(t, "По запросу", got.IndividualPrice.Label)
	require.NotNil(t, got.BasicPrice.Amount)
	assert.Equal(t, 9000.0, *got.BasicPrice.Amount)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestFileStore_ClearContactsBacksUp(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })
	ctx := context.Background()

	contacts := []domain.Contact{
		{ID: "a", Name: "Иван", Telegram: "ivan_music", Message: "Хочу учиться", CreatedAt: now},
		{ID: "b", Name: "Anna", Telegram: "anna_beats", Message: "Hello there", CreatedAt: now},
	}
	require.NoError(t, store.SaveContacts(ctx, contacts))

	backup, err := store.ClearContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), fmt.Sprintf("contacts_backup_%d.json", now.UnixMilli())), backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	var backedUp []domain.Contact
	require.NoError(t, json.Unmarshal(data, &backedUp))
	assert.Len(t, backedUp, 2)
	assert.Equal(t, "a", backedUp[0].ID)

	remaining, err := store.Contacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestFileStore_ConcurrentUpdatesKeepAllWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
				return append(contacts, domain.Contact{ID: fmt.Sprintf("c%d", i)}), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	contacts, err := store.Contacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, writers)
}

func TestFileStore_UpdateErrorLeavesDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveContacts(ctx, []domain.Contact{{ID: "keep"}}))

	boom := errors.New("boom")
	err := store.UpdateContacts(ctx, func(contacts []domain.Contact) ([]domain.Contact, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	contacts, err := store.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "keep", contacts[0].ID)
}

func TestFileStore_AppendSpam(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendSpam(ctx, domain.Contact{ID: "s1", Status: domain.ContactStatusSpam}))
	require.NoError(t, store.AppendSpam(ctx, domain.Contact{ID: "s2", Status: domain.ContactStatusSpam}))

	spam, err := store.SpamContacts(ctx)
	require.NoError(t, err)
	require.Len(t, spam, 2)
	assert.Equal(t, "s2", spam[1].ID)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Contacts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
