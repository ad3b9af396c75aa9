package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/openpatra/formstore/pkg/types"
)

// Users is the repository for portal accounts.
type Users struct {
	s *Store
}

// UserInput carries the fields accepted on account creation. Password is
// hashed with bcrypt before storage and may be empty for externally
// authenticated accounts.
type UserInput struct {
	UID               string
	Name              string
	Phone             string
	Email             string
	Password          string
	Role              string
	PreferredLanguage string
}

// UserUpdate is a partial update; nil fields keep their stored value.
type UserUpdate struct {
	Name              *string
	Phone             *string
	Email             *string
	Role              *string
	PreferredLanguage *string
}

const userColumns = `id, uid, name, phone, email, password_hash, role,
	preferred_language, bookmarks, created_at, updated_at`

// scanUser maps a row to a typed User. The bookmarks JSON column decodes to
// an empty list on corruption.
func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	var phone, email, hash sql.NullString
	var bookmarks string
	if err := row.Scan(
		&u.ID, &u.UID, &u.Name, &phone, &email, &hash, &u.Role,
		&u.PreferredLanguage, &bookmarks, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Phone = stringOf(phone)
	u.Email = stringOf(email)
	u.PasswordHash = stringOf(hash)
	u.Bookmarks = decodeJSONOr(bookmarks, []string{})
	return &u, nil
}

// Create registers an account and returns its id. The uid must be unique;
// role defaults to "user" and preferred language to English.
func (r *Users) Create(in UserInput) (string, error) {
	if in.UID == "" || in.Name == "" {
		return "", types.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = types.RoleUser
	}
	if !types.ValidRole(role) {
		return "", fmt.Errorf("%w: unknown role %q", types.ErrInvalidInput, in.Role)
	}
	lang := in.PreferredLanguage
	if lang == "" {
		lang = types.LangEnglish
	}

	var hash string
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		hash = string(h)
	}

	existing, err := r.GetByUID(in.UID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return "", err
	}
	if existing != nil {
		return "", types.ErrDuplicateUID
	}

	id := newID()
	now := nowISO()
	_, err = r.s.eng.Exec(
		`INSERT INTO users (id, uid, name, phone, email, password_hash, role,
			preferred_language, bookmarks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.UID, in.Name, nullable(in.Phone), nullable(in.Email),
		nullable(hash), role, lang, "[]", now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating user: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheUsers); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the user by id, or ErrNotFound.
func (r *Users) Get(id string) (*types.User, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByUID returns the user with the given external uid, or ErrNotFound.
func (r *Users) GetByUID(uid string) (*types.User, error) {
	row, err := r.s.eng.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE uid = ?", uid)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by uid %s: %w", uid, err)
	}
	return u, nil
}

// List returns all users ordered by creation time.
func (r *Users) List() ([]*types.User, error) {
	rows, err := r.s.eng.Query(
		"SELECT " + userColumns + " FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []*types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *Users) Update(id string, upd UserUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, nullable(*upd.Phone))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullable(*upd.Email))
	}
	if upd.Role != nil {
		if !types.ValidRole(*upd.Role) {
			return fmt.Errorf("%w: unknown role %q", types.ErrInvalidInput, *upd.Role)
		}
		sets = append(sets, "role = ?")
		args = append(args, *upd.Role)
	}
	if upd.PreferredLanguage != nil {
		sets = append(sets, "preferred_language = ?")
		args = append(args, *upd.PreferredLanguage)
	}
	args = append(args, id)

	res, err := r.s.eng.Exec(
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheUsers)
}

// Delete removes an account. Accounts delete hard; submissions and drafts
// keep their user_id as a dangling reference.
func (r *Users) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheUsers)
}

// SignIn authenticates by email and password. A missing account is the one
// lookup in the layer that returns a typed error rather than nil: callers
// display "account not found" and "wrong password" differently.
func (r *Users) SignIn(email, password string) (*types.User, error) {
	if email == "" {
		return nil, types.ErrInvalidInput
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sign-in %s: %w", email, types.ErrNotFound)
		}
		return nil, fmt.Errorf("sign-in %s: %w", email, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, types.ErrInvalidCredentials
	}
	return u, nil
}

// AddBookmark appends formID to the user's bookmark list. Idempotent.
func (r *Users) AddBookmark(id, formID string) error {
	u, err := r.Get(id)
	if err != nil {
		return err
	}
	if u.HasBookmark(formID) {
		return nil
	}
	return r.setBookmarks(id, append(u.Bookmarks, formID))
}

// RemoveBookmark drops formID from the user's bookmark list. Idempotent.
func (r *Users) RemoveBookmark(id, formID string) error {
	u, err := r.Get(id)
	if err != nil {
		return err
	}
	kept := u.Bookmarks[:0]
	for _, b := range u.Bookmarks {
		if b != formID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(u.Bookmarks) {
		return nil
	}
	return r.setBookmarks(id, kept)
}

func (r *Users) setBookmarks(id string, bookmarks []string) error {
	_, err := r.s.eng.Exec(
		"UPDATE users SET bookmarks = ?, updated_at = ? WHERE id = ?",
		encodeJSON(bookmarks), nowISO(), id)
	if err != nil {
		return fmt.Errorf("updating bookmarks for %s: %w", id, err)
	}
	return r.s.saveAndInvalidate(CacheUsers)
}
