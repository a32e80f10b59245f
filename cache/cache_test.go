package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/errors"
	pctest "github.com/promptcrafter/promptcrafter/internal/testing"
)

func testKey() Key {
	return Key{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Prompt:      "Name a city in France.",
	}
}

func TestPutAndGet(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, 24*time.Hour, nil)

	key := testKey()
	require.NoError(t, c.Put(key, "Paris", 12, 3))

	entry, err := c.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "Paris", entry.Response)
	assert.Equal(t, "openai", entry.Provider)
	assert.Equal(t, 12, entry.PromptTokens)
	assert.Equal(t, 3, entry.CompletionTokens)
	require.NotNil(t, entry.ExpiresAt)
}

func TestGetMiss(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	_, err := c.Get(testKey())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestKeyDiscriminatesFields(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	key := testKey()
	require.NoError(t, c.Put(key, "Paris", 0, 0))

	other := key
	other.Temperature = 0.9
	_, err := c.Get(other)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	other = key
	other.Model = "gpt-4o"
	_, err = c.Get(other)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	other = key
	other.Prompt = "Name a city in Spain."
	_, err = c.Get(other)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestExpiredEntryIsMissAndDeleted(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	key := testKey()
	require.NoError(t, c.Put(key, "Paris", 0, 0))

	// Backdate the expiry
	_, err := db.Exec(`UPDATE response_cache SET expires_at = ?`,
		time.Now().Add(-time.Minute).UTC().Format(time.RFC3339))
	require.NoError(t, err)

	_, err = c.Get(key)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, 0, nil)

	key := testKey()
	require.NoError(t, c.Put(key, "Paris", 0, 0))

	entry, err := c.Get(key)
	require.NoError(t, err)
	assert.Nil(t, entry.ExpiresAt)
}

func TestPutReplaces(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	key := testKey()
	require.NoError(t, c.Put(key, "Paris", 0, 0))
	require.NoError(t, c.Put(key, "Lyon", 0, 0))

	entry, err := c.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "Lyon", entry.Response)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPurgeExpired(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	require.NoError(t, c.Put(testKey(), "Paris", 0, 0))

	fresh := testKey()
	fresh.Prompt = "Name a city in Spain."
	require.NoError(t, c.Put(fresh, "Madrid", 0, 0))

	_, err := db.Exec(`UPDATE response_cache SET expires_at = ? WHERE response = 'Paris'`,
		time.Now().Add(-time.Minute).UTC().Format(time.RFC3339))
	require.NoError(t, err)

	purged, err := c.PurgeExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClear(t *testing.T) {
	db := pctest.CreateTestDB(t)
	c := New(db, time.Hour, nil)

	require.NoError(t, c.Put(testKey(), "Paris", 0, 0))

	cleared, err := c.Clear()
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
