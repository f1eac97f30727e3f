package store

import (
	"sort"
	"sync"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"golang.org/x/crypto/bcrypt"
)

// Memory is the canonical volatile store: all state lives in process memory
// and is lost on restart. One mutex spans every collection, so a waste
// mutation and its audit append form a single critical section and the id
// counters never race.
type Memory struct {
	mu sync.Mutex

	users  []models.User
	wastes []models.WasteRecord
	logs   []models.LogEntry
	tokens map[string]models.ResetToken

	nextUserID  int
	nextWasteID int
	nextLogID   int

	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tokens:      make(map[string]models.ResetToken),
		nextUserID:  1,
		nextWasteID: 1,
		nextLogID:   1,
		now:         time.Now,
	}
}

// CreateUser assigns the next user id and stores u. The caller supplies the
// password already hashed.
func (m *Memory) CreateUser(u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	u.ID = m.nextUserID
	m.nextUserID++
	m.users = append(m.users, *u)
	return nil
}

// UserByEmail returns the user with the given email, hash included.
func (m *Memory) UserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// UserByID returns the user with the given id, hash included.
func (m *Memory) UserByID(id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.userIndex(id); i >= 0 {
		user := m.users[i]
		return &user, nil
	}
	return nil, ErrNotFound
}

// UpdateProfile overwrites only the fields marked present in upd and returns
// the updated user.
func (m *Memory) UpdateProfile(id int, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.userIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	if upd.MonthlyTargetSet {
		m.users[i].MonthlyTarget = upd.MonthlyTarget
	}
	if upd.ProfilePictureSet {
		m.users[i].ProfilePictureURL = upd.ProfilePictureURL
	}

	user := m.users[i]
	return &user, nil
}

// SaveResetToken records a live reset token. Issuing a new token does not
// invalidate a prior one for the same email.
func (m *Memory) SaveResetToken(t models.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[t.Token] = t
	return nil
}

// ResetPassword redeems a token exactly once: it overwrites the password hash
// of the token's user and deletes the token. Unknown and expired tokens both
// fail with ErrInvalidToken; expiry is only ever checked here, so expired
// tokens simply linger until redemption is attempted.
func (m *Memory) ResetPassword(token, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[token]
	if !ok || t.Expired(now) {
		return ErrInvalidToken
	}

	for i := range m.users {
		if m.users[i].Email == t.Email {
			m.users[i].Password = passwordHash
			delete(m.tokens, token)
			return nil
		}
	}
	// The token stays live when the user is gone, matching the rule that
	// only a successful reset consumes it.
	return ErrNotFound
}

// WastesByUser returns the user's waste records in insertion order.
func (m *Memory) WastesByUser(userID int) ([]models.WasteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := []models.WasteRecord{}
	for _, w := range m.wastes {
		if w.UserID == userID {
			records = append(records, w)
		}
	}
	return records, nil
}

// CreateWaste assigns the next waste id and creation time, stores the record
// and appends its WASTE_ADDED audit entry in the same critical section.
func (m *Memory) CreateWaste(w *models.WasteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w.ID = m.nextWasteID
	m.nextWasteID++
	w.CreatedAt = m.now()
	m.wastes = append(m.wastes, *w)

	m.appendLogLocked(&models.LogEntry{
		UserID:      w.UserID,
		Action:      models.ActionWasteAdded,
		Description: wasteAddedDescription(*w),
	})
	return nil
}

// UpdateWaste merges the whitelisted fields of upd over the stored record and
// appends a WASTE_UPDATED entry naming the pre-update type.
func (m *Memory) UpdateWaste(id int, upd models.WasteUpdate) (*models.WasteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.wasteIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	original := m.wastes[i]
	applyWasteUpdate(&m.wastes[i], upd)
	updated := m.wastes[i]

	m.appendLogLocked(&models.LogEntry{
		UserID:      updated.UserID,
		Action:      models.ActionWasteUpdated,
		Description: wasteUpdatedDescription(original),
	})
	return &updated, nil
}

// DeleteWaste removes exactly one record and appends its WASTE_DELETED entry.
func (m *Memory) DeleteWaste(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.wasteIndex(id)
	if i < 0 {
		return ErrNotFound
	}

	deleted := m.wastes[i]
	m.wastes = append(m.wastes[:i], m.wastes[i+1:]...)

	m.appendLogLocked(&models.LogEntry{
		UserID:      deleted.UserID,
		Action:      models.ActionWasteDeleted,
		Description: wasteDeletedDescription(deleted),
	})
	return nil
}

// AppendLog assigns the next log id and timestamp and stores the entry.
func (m *Memory) AppendLog(e *models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendLogLocked(e)
	return nil
}

func (m *Memory) appendLogLocked(e *models.LogEntry) {
	e.ID = m.nextLogID
	m.nextLogID++
	e.CreatedAt = m.now()
	m.logs = append(m.logs, *e)
}

// LogsByUser returns the user's audit entries sorted by creation time
// descending. Timestamps can collide, in which case the later-appended entry
// sorts first.
func (m *Memory) LogsByUser(userID int) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []models.LogEntry{}
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].UserID == userID {
			entries = append(entries, m.logs[i])
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (m *Memory) userIndex(id int) int {
	for i := range m.users {
		if m.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) wasteIndex(id int) int {
	for i := range m.wastes {
		if m.wastes[i].ID == id {
			return i
		}
	}
	return -1
}

// SeedDemoData loads the demo account and a couple of waste records so the
// API is usable straight after boot. Login with admin@example.com /
// password123.
func (m *Memory) SeedDemoData() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:      "Admin User",
		Email:         "admin@example.com",
		Password:      string(hash),
		MonthlyTarget: 50,
	}
	if err := m.CreateUser(&admin); err != nil {
		return err
	}

	notes1 := "Mainly water bottles"
	notes2 := "Vegetable peels and leftovers"
	seed := []models.WasteRecord{
		{
			Type:     "Plastic Bottles",
			Quantity: 5.2,
			Unit:     "kg",
			Category: "Plastics",
			Status:   models.StatusRecycled,
			Location: "Kitchen",
			Notes:    &notes1,
			UserID:   admin.ID,
		},
		{
			Type:     "Food Scraps",
			Quantity: 10,
			Unit:     "kg",
			Category: "Organic Waste",
			Status:   models.StatusDisposed,
			Location: "Kitchen",
			Notes:    &notes2,
			UserID:   admin.ID,
		},
	}
	// Seeded records predate the process, so no audit entries are written
	// for them.
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range seed {
		w.ID = m.nextWasteID
		m.nextWasteID++
		w.CreatedAt = m.now()
		m.wastes = append(m.wastes, w)
	}
	return nil
}
