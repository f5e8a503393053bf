package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/smrs/internal/models"
)

const testOrigin = "http://127.0.0.1:8080"

func Test(t *testing.T) {
	t.Run("The base jsondb package test", func(t *testing.T) {
		testDBFileName := filepath.Join(t.TempDir(), "cookies_test.json")

		theStorage, err := New(testDBFileName)
		require.NoError(t, err)
		require.NotNil(t, theStorage)

		_, err = os.Stat(testDBFileName)
		require.NoError(t, err, "New() should create the file")

		expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		cookies := []models.StoredCookie{
			{Name: "smrs_session_id", Value: "SomeSession", Path: "/", Expires: expires},
		}

		err = theStorage.SaveCookies(context.Background(), testOrigin, cookies)
		assert.NoError(t, err, "The `theStorage.SaveCookies()` should not return error")

		loaded, err := theStorage.LoadCookies(context.Background())
		assert.NoError(t, err, "The `theStorage.LoadCookies()` should not return error")
		assert.Equal(t, map[string][]models.StoredCookie{testOrigin: cookies}, loaded)

		err = theStorage.Close()
		require.NoError(t, err)

		reopened, err := New(testDBFileName)
		require.NoError(t, err)

		loaded, err = reopened.LoadCookies(context.Background())
		require.NoError(t, err)
		require.Len(t, loaded[testOrigin], 1)
		assert.Equal(t, "SomeSession", loaded[testOrigin][0].Value)
		assert.True(t, expires.Equal(loaded[testOrigin][0].Expires))
	})

	t.Run("Saving an empty list drops the origin", func(t *testing.T) {
		theStorage, err := New(filepath.Join(t.TempDir(), "cookies_test.json"))
		require.NoError(t, err)

		err = theStorage.SaveCookies(context.Background(), testOrigin, []models.StoredCookie{{Name: "a", Value: "b"}})
		require.NoError(t, err)

		err = theStorage.SaveCookies(context.Background(), testOrigin, nil)
		require.NoError(t, err)

		loaded, err := theStorage.LoadCookies(context.Background())
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("An empty file is initialized", func(t *testing.T) {
		fileName := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(fileName, nil, 0600))

		theStorage, err := New(fileName)
		require.NoError(t, err)

		loaded, err := theStorage.LoadCookies(context.Background())
		require.NoError(t, err)
		assert.Empty(t, loaded)

		err = theStorage.SaveCookies(context.Background(), testOrigin, []models.StoredCookie{{Name: "a", Value: "b", Path: "/"}})
		require.NoError(t, err)
		require.NoError(t, theStorage.Close())

		reopened, err := New(fileName)
		require.NoError(t, err)
		loaded, err = reopened.LoadCookies(context.Background())
		require.NoError(t, err)
		assert.Len(t, loaded[testOrigin], 1)
	})

	t.Run("A broken file is reported", func(t *testing.T) {
		fileName := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(fileName, []byte("not json"), 0600))

		_, err := New(fileName)
		assert.Error(t, err)
	})
}
