package db

import (
	"database/sql"
	"errors"
	"fmt"

	"cocoa/models"

	"github.com/charmbracelet/log"
)

var ErrNotLinked = errors.New("no last.fm account linked - use /link first")
var ErrAlreadyLinked = errors.New("you already have a last.fm account attached")

// Users persists per-user engagement records (see [models.User]).
type Users struct {
	db *DB
}

func NewUsers(db *DB) *Users {
	return &Users{db}
}

// GetOrCreate returns the record for the given user, creating a zeroed one if
// none exists yet. Creation is insert-if-absent, so concurrent first
// invocations by the same user cannot produce duplicate rows.
func (u *Users) GetOrCreate(id string) (*models.User, error) {
	log.Info("Resolving user", "id", id)

	var user *models.User
	err := u.db.Transaction(func(tx Tx) error {
		stmt := "insert into users (id) values (?) on conflict (id) do nothing"
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}

		var err error
		user, err = get(tx, id)
		return err
	})
	if err != nil {
		log.Error("User resolution failed", "id", id, "err", err)
		return nil, err
	}

	log.Debug("User resolved", "id", id, "user", user)
	return user, nil
}

// Get returns the record for the given user, or [sql.ErrNoRows] if the user
// has never run a command.
func (u *Users) Get(id string) (*models.User, error) {
	return get(u.db.Conn, id)
}

func get(conn Tx, id string) (*models.User, error) {
	stmt := "select id, lastfm_username, currency, experience, command_count from users where id = ?"

	user := models.NewUser(id)
	var name sql.NullString

	row := conn.QueryRow(stmt, id)
	if err := row.Scan(&user.ID, &name, &user.Currency, &user.Experience, &user.CommandCount); err != nil {
		return nil, err
	}

	user.LastfmUsername = name.String
	return user, nil
}

// SetUsername attaches a Last.fm account to the given user. Errors with
// [ErrAlreadyLinked] if an account is attached already, including when a
// racing link wrote one first.
func (u *Users) SetUsername(id string, username string) error {
	log.Info("Linking account", "id", id, "username", username)

	// Single upsert so a racing link surfaces as a lost conflict instead of a
	// silent overwrite.
	stmt := `
	insert into users (id, lastfm_username) values (?, ?)
		on conflict (id) do update
		set lastfm_username = excluded.lastfm_username
		where users.lastfm_username is null
	`
	res, err := u.db.Conn.Exec(stmt, id, username)
	if err != nil {
		log.Error("Link failed", "id", id, "username", username, "err", err)
		return err
	}
	if i, _ := res.RowsAffected(); i == 0 {
		return ErrAlreadyLinked
	}

	log.Debug("Link complete", "id", id, "username", username)
	return nil
}

// ClearUsername detaches the user's Last.fm account. Errors with
// [ErrNotLinked] if none is attached.
func (u *Users) ClearUsername(id string) error {
	log.Info("Unlinking account", "id", id)

	stmt := "update users set lastfm_username = null where id = ? and lastfm_username is not null"
	res, err := u.db.Conn.Exec(stmt, id)
	if err != nil {
		log.Error("Unlink failed", "id", id, "err", err)
		return err
	}
	if i, _ := res.RowsAffected(); i == 0 {
		return ErrNotLinked
	}

	log.Debug("Unlink complete", "id", id)
	return nil
}

// GetUsername returns the Last.fm account attached to the given user. Errors
// with [ErrNotLinked] if none is attached.
func (u *Users) GetUsername(id string) (string, error) {
	stmt := "select lastfm_username from users where id = ?"

	var name sql.NullString
	row := u.db.Conn.QueryRow(stmt, id)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotLinked
		}
		return "", err
	}

	if name.String == "" {
		return "", ErrNotLinked
	}
	return name.String, nil
}

// IncrementCommandCount adds one completed command to the user's record. The
// increment happens in-place in the database, so concurrent invocations
// cannot lose updates.
func (u *Users) IncrementCommandCount(id string) error {
	return u.add(id, "command_count", 1)
}

// AddCurrency grants the user the given amount of currency.
func (u *Users) AddCurrency(id string, n int) error {
	return u.add(id, "currency", n)
}

// AddExperience grants the user the given amount of experience.
func (u *Users) AddExperience(id string, n int) error {
	return u.add(id, "experience", n)
}

func (u *Users) add(id string, column string, n int) error {
	log.Debug("Updating counter", "id", id, "column", column, "n", n)
	stmt := fmt.Sprintf("update users set %s = %s + ? where id = ?", column, column)

	res, err := u.db.Conn.Exec(stmt, n, id)
	if err != nil {
		log.Error("Counter update failed", "id", id, "column", column, "err", err)
		return err
	}
	if i, _ := res.RowsAffected(); i == 0 {
		log.Error("Counter update failed", "id", id, "column", column, "err", "no rows affected")
		return fmt.Errorf("no rows affected")
	}

	return nil
}
