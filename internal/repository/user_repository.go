package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyumbalink/nyumbalink/internal/i18n"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/utils"
)

const userCols = "id,email,password_hash,full_name,phone,role,language,is_active,created_at,updated_at"

// UserRepo reads and writes the profiles table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// ProfileUpdate holds the fields a user may change about themselves.  Nil
// fields are left untouched.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
	Language *string
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role     model.Role // empty means any role
	Text     string     // matches email or full name
	Page     int
	PageSize int
}

func scanUser(s scanner) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &u.Role, &u.Language, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if phone.Valid {
		u.Phone = &phone.String
	}
	return u, err
}

// Create hashes password, inserts u and fills in the generated fields.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Language = i18n.Normalize(u.Language)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (email, password_hash, full_name, phone, role, language) VALUES (?,?,?,?,?,?)",
		u.Email, hash, strings.TrimSpace(u.FullName), u.Phone, u.Role, u.Language)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM profiles WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM profiles WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile applies the non-nil fields of p and returns the fresh row.
// An empty phone string clears the phone number.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (model.User, error) {
	var (
		sets []string
		args []any
	)
	if p.FullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, strings.TrimSpace(*p.FullName))
	}
	if p.Phone != nil {
		sets = append(sets, "phone=?")
		if *p.Phone == "" {
			args = append(args, nil)
		} else {
			args = append(args, *p.Phone)
		}
	}
	if p.Language != nil {
		sets = append(sets, "language=?")
		args = append(args, i18n.Normalize(*p.Language))
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// SetRole changes a user's role.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	return r.execExisting(ctx, "UPDATE profiles SET role=? WHERE id=?", id, role, id)
}

// SetActive enables or disables an account.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.execExisting(ctx, "UPDATE profiles SET is_active=? WHERE id=?", id, active, id)
}

// execExisting runs an update and maps "no such row" to ErrUserNotFound.
// MySQL reports zero affected rows for unchanged values too, so existence
// is checked separately.
func (r *UserRepo) execExisting(ctx context.Context, q string, id uint64, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.GetByID(ctx, id)
	return err
}

// List returns one page of users plus the total matching count.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Role != "" {
		where = append(where, "role=?")
		args = append(args, f.Role)
	}
	if t := strings.ToLower(strings.TrimSpace(f.Text)); t != "" {
		where = append(where, "(LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?)")
		args = append(args, "%"+t+"%", "%"+t+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(f.Page, f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM profiles WHERE "+cond+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// CountByRole returns the number of accounts per role.  Roles with no
// accounts are present with a zero count.
func (r *UserRepo) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	out := make(map[model.Role]int64, len(model.Roles))
	for _, role := range model.Roles {
		out[role] = 0
	}
	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM profiles GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			role model.Role
			n    int64
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}

// GetLanguage returns a user's preferred language, English when unknown.
func (r *UserRepo) GetLanguage(ctx context.Context, id uint64) (string, error) {
	var lang string
	err := r.DB.QueryRowContext(ctx, "SELECT language FROM profiles WHERE id=?", id).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return i18n.English, ErrUserNotFound
	}
	if err != nil {
		return i18n.English, err
	}
	return i18n.Normalize(lang), nil
}
