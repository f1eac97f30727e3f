package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"github.com/lib/pq"
)

// Postgres is an optional persistent store over database/sql. Waste
// mutations and their audit entry share one transaction.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database connection.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// CreateUser inserts u and fills in its assigned id.
func (p *Postgres) CreateUser(u *models.User) error {
	query := `INSERT INTO users (username, email, password, monthly_target, profile_picture_url)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := p.db.QueryRow(query, u.Username, u.Email, u.Password, u.MonthlyTarget, u.ProfilePictureURL).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

// UserByEmail retrieves a user by email, password hash included.
func (p *Postgres) UserByEmail(email string) (*models.User, error) {
	return p.scanUser(p.db.QueryRow(
		`SELECT id, username, email, password, monthly_target, profile_picture_url FROM users WHERE email = $1`, email))
}

// UserByID retrieves a user by id, password hash included.
func (p *Postgres) UserByID(id int) (*models.User, error) {
	return p.scanUser(p.db.QueryRow(
		`SELECT id, username, email, password, monthly_target, profile_picture_url FROM users WHERE id = $1`, id))
}

func (p *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.MonthlyTarget, &u.ProfilePictureURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return &u, nil
}

// UpdateProfile overwrites only the fields marked present in upd and returns
// the updated user.
func (p *Postgres) UpdateProfile(id int, upd models.ProfileUpdate) (*models.User, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var u models.User
	err = tx.QueryRow(
		`SELECT id, username, email, password, monthly_target, profile_picture_url FROM users WHERE id = $1 FOR UPDATE`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.MonthlyTarget, &u.ProfilePictureURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting user for update: %w", err)
	}

	if upd.MonthlyTargetSet {
		u.MonthlyTarget = upd.MonthlyTarget
	}
	if upd.ProfilePictureSet {
		u.ProfilePictureURL = upd.ProfilePictureURL
	}

	_, err = tx.Exec(`UPDATE users SET monthly_target = $1, profile_picture_url = $2 WHERE id = $3`,
		u.MonthlyTarget, u.ProfilePictureURL, u.ID)
	if err != nil {
		return nil, fmt.Errorf("error updating user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing profile update: %w", err)
	}
	return &u, nil
}

// SaveResetToken records a live reset token.
func (p *Postgres) SaveResetToken(t models.ResetToken) error {
	_, err := p.db.Exec(`INSERT INTO reset_tokens (token, email, expires_at) VALUES ($1, $2, $3)`,
		t.Token, t.Email, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error inserting reset token: %w", err)
	}
	return nil
}

// ResetPassword redeems a token exactly once: it overwrites the password hash
// of the token's user and deletes the token, in one transaction. Unknown and
// expired tokens both fail with ErrInvalidToken; expired rows stay behind
// since redemption is the only path that checks expiry.
func (p *Postgres) ResetPassword(token, passwordHash string, now time.Time) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var email string
	err = tx.QueryRow(
		`SELECT email FROM reset_tokens WHERE token = $1 AND expires_at >= $2 FOR UPDATE`,
		token, now).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return fmt.Errorf("error looking up reset token: %w", err)
	}

	res, err := tx.Exec(`UPDATE users SET password = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking password update: %w", err)
	}
	if n == 0 {
		// Rollback keeps the token: only a successful reset consumes it.
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM reset_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("error deleting reset token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing password reset: %w", err)
	}
	return nil
}

// WastesByUser returns the user's waste records in insertion order.
func (p *Postgres) WastesByUser(userID int) ([]models.WasteRecord, error) {
	rows, err := p.db.Query(
		`SELECT id, type, quantity, unit, category, status, location, notes, created_at, user_id
		 FROM wastes WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying waste records: %w", err)
	}
	defer rows.Close()

	records := []models.WasteRecord{}
	for rows.Next() {
		var w models.WasteRecord
		if err := rows.Scan(&w.ID, &w.Type, &w.Quantity, &w.Unit, &w.Category, &w.Status,
			&w.Location, &w.Notes, &w.CreatedAt, &w.UserID); err != nil {
			return nil, fmt.Errorf("error scanning waste row: %w", err)
		}
		records = append(records, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating waste rows: %w", err)
	}
	return records, nil
}

// CreateWaste inserts the record and its WASTE_ADDED audit entry in one
// transaction, filling in the assigned id and creation time.
func (p *Postgres) CreateWaste(w *models.WasteRecord) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO wastes (type, quantity, unit, category, status, location, notes, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err = tx.QueryRow(query, w.Type, w.Quantity, w.Unit, w.Category, w.Status, w.Location, w.Notes, w.UserID).
		Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting waste record: %w", err)
	}

	if err := appendLogTx(tx, &models.LogEntry{
		UserID:      w.UserID,
		Action:      models.ActionWasteAdded,
		Description: wasteAddedDescription(*w),
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing waste insert: %w", err)
	}
	return nil
}

// UpdateWaste merges the whitelisted fields of upd over the stored record
// and appends a WASTE_UPDATED entry naming the pre-update type, atomically.
func (p *Postgres) UpdateWaste(id int, upd models.WasteUpdate) (*models.WasteRecord, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var w models.WasteRecord
	err = tx.QueryRow(
		`SELECT id, type, quantity, unit, category, status, location, notes, created_at, user_id
		 FROM wastes WHERE id = $1 FOR UPDATE`, id).
		Scan(&w.ID, &w.Type, &w.Quantity, &w.Unit, &w.Category, &w.Status, &w.Location, &w.Notes, &w.CreatedAt, &w.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting waste record for update: %w", err)
	}

	original := w
	applyWasteUpdate(&w, upd)

	_, err = tx.Exec(
		`UPDATE wastes SET type = $1, quantity = $2, unit = $3, category = $4, status = $5, location = $6, notes = $7
		 WHERE id = $8`,
		w.Type, w.Quantity, w.Unit, w.Category, w.Status, w.Location, w.Notes, w.ID)
	if err != nil {
		return nil, fmt.Errorf("error updating waste record: %w", err)
	}

	if err := appendLogTx(tx, &models.LogEntry{
		UserID:      w.UserID,
		Action:      models.ActionWasteUpdated,
		Description: wasteUpdatedDescription(original),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing waste update: %w", err)
	}
	return &w, nil
}

// DeleteWaste removes exactly one record and appends its WASTE_DELETED
// entry, atomically.
func (p *Postgres) DeleteWaste(id int) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var w models.WasteRecord
	err = tx.QueryRow(`DELETE FROM wastes WHERE id = $1 RETURNING type, quantity, unit, user_id`, id).
		Scan(&w.Type, &w.Quantity, &w.Unit, &w.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting waste record: %w", err)
	}

	if err := appendLogTx(tx, &models.LogEntry{
		UserID:      w.UserID,
		Action:      models.ActionWasteDeleted,
		Description: wasteDeletedDescription(w),
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing waste delete: %w", err)
	}
	return nil
}

// AppendLog inserts one audit entry, filling in its id and timestamp.
func (p *Postgres) AppendLog(e *models.LogEntry) error {
	err := p.db.QueryRow(
		`INSERT INTO logs (user_id, action, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		e.UserID, e.Action, e.Description).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting log entry: %w", err)
	}
	return nil
}

func appendLogTx(tx *sql.Tx, e *models.LogEntry) error {
	err := tx.QueryRow(
		`INSERT INTO logs (user_id, action, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		e.UserID, e.Action, e.Description).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting log entry: %w", err)
	}
	return nil
}

// LogsByUser returns the user's audit entries newest first; entries sharing
// a timestamp come back in reverse insertion order.
func (p *Postgres) LogsByUser(userID int) ([]models.LogEntry, error) {
	rows, err := p.db.Query(
		`SELECT id, user_id, action, description, created_at FROM logs
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying log entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating log rows: %w", err)
	}
	return entries, nil
}
