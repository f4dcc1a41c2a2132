package db

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsers(t *testing.T) *Users {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return NewUsers(db)
}

func TestGetOrCreate(t *testing.T) {
	users := newTestUsers(t)

	user, err := users.GetOrCreate("u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 0, user.Currency)
	assert.Equal(t, 0, user.Experience)
	assert.Equal(t, 0, user.CommandCount)
	assert.False(t, user.Linked())

	// A second resolution returns the same record, not a new one.
	require.NoError(t, users.SetUsername("u1", "alice"))
	again, err := users.GetOrCreate("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.LastfmUsername)
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	users := newTestUsers(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.GetOrCreate("u1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	row := users.db.Conn.QueryRow("select count(*) from users where id = ?", "u1")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count, "concurrent creation must yield exactly one record")
}

func TestIncrementCommandCount(t *testing.T) {
	users := newTestUsers(t)

	_, err := users.GetOrCreate("u1")
	require.NoError(t, err)
	_, err = users.GetOrCreate("u2")
	require.NoError(t, err)

	// Interleave increments for two users; neither may affect the other.
	for i := 0; i < 25; i++ {
		require.NoError(t, users.IncrementCommandCount("u1"))
		if i%2 == 0 {
			require.NoError(t, users.IncrementCommandCount("u2"))
		}
	}

	u1, err := users.Get("u1")
	require.NoError(t, err)
	u2, err := users.Get("u2")
	require.NoError(t, err)

	assert.Equal(t, 25, u1.CommandCount)
	assert.Equal(t, 13, u2.CommandCount)
}

func TestIncrementCommandCount_NoRecord(t *testing.T) {
	users := newTestUsers(t)

	assert.Error(t, users.IncrementCommandCount("nobody"))
}

func TestSetUsername(t *testing.T) {
	users := newTestUsers(t)

	_, err := users.GetOrCreate("u1")
	require.NoError(t, err)

	require.NoError(t, users.SetUsername("u1", "alice"))

	name, err := users.GetUsername("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	// A second link must lose the conflict instead of overwriting.
	err = users.SetUsername("u1", "bob")
	assert.ErrorIs(t, err, ErrAlreadyLinked)

	name, err = users.GetUsername("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestClearUsername(t *testing.T) {
	users := newTestUsers(t)

	_, err := users.GetOrCreate("u1")
	require.NoError(t, err)

	assert.ErrorIs(t, users.ClearUsername("u1"), ErrNotLinked)

	require.NoError(t, users.SetUsername("u1", "alice"))
	require.NoError(t, users.ClearUsername("u1"))

	_, err = users.GetUsername("u1")
	assert.ErrorIs(t, err, ErrNotLinked)

	// Relinking after an unlink is allowed.
	require.NoError(t, users.SetUsername("u1", "bob"))
}

func TestGetUsername_NeverSeen(t *testing.T) {
	users := newTestUsers(t)

	_, err := users.GetUsername("nobody")
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestAddCurrencyAndExperience(t *testing.T) {
	users := newTestUsers(t)

	_, err := users.GetOrCreate("u1")
	require.NoError(t, err)

	require.NoError(t, users.AddCurrency("u1", 5))
	require.NoError(t, users.AddCurrency("u1", 3))
	require.NoError(t, users.AddExperience("u1", 10))

	user, err := users.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, 8, user.Currency)
	assert.Equal(t, 10, user.Experience)
	assert.Equal(t, 0, user.CommandCount)
}
