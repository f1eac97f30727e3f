package store

import (
	"testing"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(email string) *models.User {
	return &models.User{
		Username: "Test User",
		Email:    email,
		Password: "hashed",
	}
}

func TestCreateUser_AssignsMonotonicIDs(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	a := newTestUser("a@x.com")
	require.NoError(t, m.CreateUser(a))
	b := newTestUser("b@x.com")
	require.NoError(t, m.CreateUser(b))

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	require.NoError(t, m.CreateUser(newTestUser("a@x.com")))
	err := m.CreateUser(newTestUser("a@x.com"))
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// A later registration with a fresh email still gets the next id.
	c := newTestUser("c@x.com")
	require.NoError(t, m.CreateUser(c))
	assert.Equal(t, 2, c.ID)
}

func TestUserByEmail_NotFound(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	_, err := m.UserByEmail("missing@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_PresenceSemantics(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	u := newTestUser("a@x.com")
	require.NoError(t, m.CreateUser(u))

	url := "http://example.com/pic.png"
	updated, err := m.UpdateProfile(u.ID, models.ProfileUpdate{
		MonthlyTarget:     25,
		MonthlyTargetSet:  true,
		ProfilePictureURL: &url,
		ProfilePictureSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.MonthlyTarget)
	require.NotNil(t, updated.ProfilePictureURL)
	assert.Equal(t, url, *updated.ProfilePictureURL)

	// Absent fields stay untouched; explicit null clears the picture.
	updated, err = m.UpdateProfile(u.ID, models.ProfileUpdate{ProfilePictureSet: true})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.MonthlyTarget)
	assert.Nil(t, updated.ProfilePictureURL)

	// Zero is falsy but defined, and still overwrites.
	updated, err = m.UpdateProfile(u.ID, models.ProfileUpdate{MonthlyTargetSet: true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.MonthlyTarget)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	_, err := m.UpdateProfile(42, models.ProfileUpdate{MonthlyTargetSet: true})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_SingleUse(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	require.NoError(t, m.CreateUser(newTestUser("a@x.com")))
	now := time.Now()
	require.NoError(t, m.SaveResetToken(models.ResetToken{
		Token:     "tok-1",
		Email:     "a@x.com",
		ExpiresAt: now.Add(models.ResetTokenTTL),
	}))

	require.NoError(t, m.ResetPassword("tok-1", "new-hash", now))

	u, err := m.UserByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.Password)

	// A second redemption of the same token fails.
	err = m.ResetPassword("tok-1", "other-hash", now)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPassword_Expired(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	require.NoError(t, m.CreateUser(newTestUser("a@x.com")))
	now := time.Now()
	require.NoError(t, m.SaveResetToken(models.ResetToken{
		Token:     "tok-old",
		Email:     "a@x.com",
		ExpiresAt: now.Add(-time.Minute),
	}))

	err := m.ResetPassword("tok-old", "new-hash", now)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	err := m.ResetPassword("never-issued", "new-hash", time.Now())
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPassword_UserMissingKeepsToken(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	now := time.Now()
	require.NoError(t, m.SaveResetToken(models.ResetToken{
		Token:     "tok-orphan",
		Email:     "ghost@x.com",
		ExpiresAt: now.Add(models.ResetTokenTTL),
	}))

	err := m.ResetPassword("tok-orphan", "new-hash", now)
	require.ErrorIs(t, err, ErrNotFound)

	// Only a successful reset consumes the token.
	require.NoError(t, m.CreateUser(newTestUser("ghost@x.com")))
	require.NoError(t, m.ResetPassword("tok-orphan", "new-hash", now))
}

func newTestWaste(userID int) *models.WasteRecord {
	return &models.WasteRecord{
		Type:     "Paper",
		Quantity: 2,
		Unit:     "kg",
		Category: "Recyclable",
		Status:   models.StatusRecycled,
		Location: "Office",
		UserID:   userID,
	}
}

func TestCreateWaste_AssignsIDAndAudits(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	w := newTestWaste(1)
	require.NoError(t, m.CreateWaste(w))
	assert.Equal(t, 1, w.ID)
	assert.False(t, w.CreatedAt.IsZero())

	entries, err := m.LogsByUser(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionWasteAdded, entries[0].Action)
	assert.Equal(t, "Added 2 kg of Paper.", entries[0].Description)
}

func TestWastesByUser_InsertionOrder(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	first := newTestWaste(1)
	require.NoError(t, m.CreateWaste(first))
	other := newTestWaste(2)
	require.NoError(t, m.CreateWaste(other))
	second := newTestWaste(1)
	second.Type = "Glass"
	require.NoError(t, m.CreateWaste(second))

	records, err := m.WastesByUser(1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
}

func TestUpdateWaste_MergesWhitelistedFields(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	w := newTestWaste(1)
	notes := "old notes"
	w.Notes = &notes
	require.NoError(t, m.CreateWaste(w))

	status := models.StatusDisposed
	updated, err := m.UpdateWaste(w.ID, models.WasteUpdate{Status: &status, NotesSet: true})
	require.NoError(t, err)

	// Unspecified fields are retained; notes present as null clears them.
	assert.Equal(t, models.StatusDisposed, updated.Status)
	assert.Equal(t, "Paper", updated.Type)
	assert.Equal(t, 2.0, updated.Quantity)
	assert.Equal(t, w.CreatedAt, updated.CreatedAt)
	assert.Equal(t, w.UserID, updated.UserID)
	assert.Nil(t, updated.Notes)

	entries, err := m.LogsByUser(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionWasteUpdated, entries[0].Action)
	assert.Equal(t, "Updated waste record for Paper.", entries[0].Description)
}

func TestUpdateWaste_NotFoundLeavesLogUntouched(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	_, err := m.UpdateWaste(99, models.WasteUpdate{})
	require.ErrorIs(t, err, ErrNotFound)

	entries, err := m.LogsByUser(99)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteWaste_RemovesExactlyOneAndAudits(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	keep := newTestWaste(1)
	require.NoError(t, m.CreateWaste(keep))
	doomed := newTestWaste(1)
	doomed.Type = "Cans"
	doomed.Quantity = 3
	require.NoError(t, m.CreateWaste(doomed))

	require.NoError(t, m.DeleteWaste(doomed.ID))

	records, err := m.WastesByUser(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, keep.ID, records[0].ID)

	entries, err := m.LogsByUser(1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ActionWasteDeleted, entries[0].Action)
	assert.Equal(t, "Deleted 3 kg of Cans.", entries[0].Description)

	require.ErrorIs(t, m.DeleteWaste(doomed.ID), ErrNotFound)
}

func TestLogsByUser_SortedByTimeDescending(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	current := base
	m.now = func() time.Time { return current }

	addEntry := func(desc string) {
		require.NoError(t, m.AppendLog(&models.LogEntry{
			UserID:      1,
			Action:      models.ActionUserLogin,
			Description: desc,
		}))
	}

	addEntry("first")
	current = base.Add(2 * time.Minute)
	addEntry("second")
	current = base.Add(time.Minute)
	addEntry("third")

	entries, err := m.LogsByUser(1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "second", entries[0].Description)
	assert.Equal(t, "third", entries[1].Description)
	assert.Equal(t, "first", entries[2].Description)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt))
	}
}

func TestLogsByUser_TimestampTiesBreakByReverseInsertion(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	for _, desc := range []string{"one", "two", "three"} {
		require.NoError(t, m.AppendLog(&models.LogEntry{
			UserID:      1,
			Action:      models.ActionUserLogin,
			Description: desc,
		}))
	}

	entries, err := m.LogsByUser(1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "three", entries[0].Description)
	assert.Equal(t, "two", entries[1].Description)
	assert.Equal(t, "one", entries[2].Description)
}

func TestSeedDemoData(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	require.NoError(t, m.SeedDemoData())

	admin, err := m.UserByEmail("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, admin.ID)

	records, err := m.WastesByUser(admin.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Seeded records predate the process and carry no audit entries.
	entries, err := m.LogsByUser(admin.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The next created waste continues the id sequence.
	w := newTestWaste(admin.ID)
	require.NoError(t, m.CreateWaste(w))
	assert.Equal(t, 3, w.ID)
}
