package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/moviehub/ticketing/internal/model"
	"github.com/moviehub/ticketing/internal/utils"
)

// emailRe is a deliberately loose shape check; real validation happens
// when mail is actually delivered. It only rejects obvious garbage.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserRepo is the credential store. It owns every read and write on the
// users table and is the only place passwords are hashed or compared.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,role,membership,reward_points,created_at,updated_at"

// Create validates and inserts a new user, returning the stored record.
// The password is bcrypt-hashed before it touches the database. A
// duplicate username or email yields ErrUserExists; invalid role or
// membership values yield ErrInvalidInput.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role, membership string, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return model.User{}, ErrInvalidInput
	}
	if !emailRe.MatchString(email) {
		return model.User{}, ErrInvalidInput
	}
	rol, ok := model.ParseRole(role)
	if !ok {
		return model.User{}, ErrInvalidInput
	}
	tier, ok := model.ParseMembership(membership)
	if !ok {
		return model.User{}, ErrInvalidInput
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, membership) VALUES (?,?,?,?,?)",
		username, email, hash, string(rol), string(tier))
	if err != nil {
		// MySQL error 1062 = duplicate entry on a unique index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrUserExists
		}
		return model.User{}, asStoreErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByCredentials fetches a user by username and verifies the
// password. An unknown username and a failed hash comparison both
// return ErrInvalidCredentials: the caller must not be able to tell
// which one happened.
func (r *UserRepo) GetByCredentials(ctx context.Context, username, password string) (model.User, error) {
	u, err := r.getBy(ctx, "username=?", strings.TrimSpace(username))
	if err != nil {
		if err == ErrNotFound {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID fetches a user by id, returning ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getBy(ctx, "id=?", id)
}

func (r *UserRepo) getBy(ctx context.Context, cond string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+cond+" LIMIT 1", arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Membership,
			&u.RewardPoints, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, asStoreErr(err)
	}
	return u, nil
}

// List returns every user in id order. Admin-only at the handler layer.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.Membership, &u.RewardPoints, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserPatch carries the fields an update may change. Nil means "leave
// unchanged". Username is immutable; password changes are re-hashed.
type UserPatch struct {
	Email        *string
	Password     *string
	Role         *string
	Membership   *string
	RewardPoints *uint64
}

// Update applies a validated patch to one user and returns the updated
// record. Every field is validated before any SQL is issued so a bad
// patch changes nothing. ErrNotFound when the id does not exist.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch, cost int) (model.User, error) {
	set := []string{}
	args := []any{}

	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if !emailRe.MatchString(email) {
			return model.User{}, ErrInvalidInput
		}
		set = append(set, "email=?")
		args = append(args, email)
	}
	if p.Password != nil {
		if *p.Password == "" {
			return model.User{}, ErrInvalidInput
		}
		hash, err := utils.HashPassword(*p.Password, cost)
		if err != nil {
			return model.User{}, err
		}
		set = append(set, "password_hash=?")
		args = append(args, hash)
	}
	if p.Role != nil {
		rol, ok := model.ParseRole(*p.Role)
		if !ok {
			return model.User{}, ErrInvalidInput
		}
		set = append(set, "role=?")
		args = append(args, string(rol))
	}
	if p.Membership != nil {
		tier, ok := model.ParseMembership(*p.Membership)
		if !ok {
			return model.User{}, ErrInvalidInput
		}
		set = append(set, "membership=?")
		args = append(args, string(tier))
	}
	if p.RewardPoints != nil {
		set = append(set, "reward_points=?")
		args = append(args, *p.RewardPoints)
	}
	if len(set) == 0 {
		// Nothing to change; still report whether the user exists.
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrUserExists
		}
		return model.User{}, asStoreErr(err)
	}
	// RowsAffected is 0 both for a missing row and for a no-op update,
	// so existence is confirmed by the read-back instead.
	if _, err := res.RowsAffected(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user. The second delete of the same id reports
// ErrNotFound; deletion is not idempotent by contract.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return asStoreErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRewardPoints adds points to a user's balance. Negative deltas are
// clamped at zero in SQL so the balance can never go negative even if
// the rewards stream misbehaves.
func (r *UserRepo) AddRewardPoints(ctx context.Context, id uint64, delta int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reward_points = GREATEST(0, CAST(reward_points AS SIGNED) + ?) WHERE id=?",
		delta, id)
	if err != nil {
		return asStoreErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// Zero affected rows covers both a missing user and a delta that
	// left the balance unchanged; only the former is an error.
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
