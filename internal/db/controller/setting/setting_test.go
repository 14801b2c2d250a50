package setting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/db/dbtest"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

func TestGet(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	testCases := []struct {
		name          string
		settingName   string
		seed          map[string]string
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "empty name",
			settingName:   "",
			expectedError: rbac.ErrValidation,
		},
		{
			name:          "setting not found",
			settingName:   "nonexistent",
			expectedError: rbac.ErrNotFound,
		},
		{
			name:          "successful get",
			settingName:   "site_name",
			seed:          map[string]string{"site_name": "Tiger Archive"},
			expectedValue: []byte("Tiger Archive"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s.DB().Exec("DELETE FROM settings")

			for k, v := range tc.seed {
				_, err := Set(ctx, s, k, []byte(v))
				require.NoError(t, err)
			}

			setting, err := Get(ctx, s, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestSetUpserts(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	_, err := Set(ctx, s, "marker", []byte("one"))
	require.NoError(t, err)

	_, err = Set(ctx, s, "marker", []byte("two"))
	require.NoError(t, err)

	setting, err := Get(ctx, s, "marker")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), setting.Value)

	var count int64

	require.NoError(t, s.DB().Table("settings").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = Set(ctx, s, "", nil)
	require.ErrorIs(t, err, ErrSettingNameEmpty)
}

func TestDelete(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	require.ErrorIs(t, Delete(ctx, s, "missing"), rbac.ErrNotFound)
	require.ErrorIs(t, Delete(ctx, s, ""), rbac.ErrValidation)

	_, err := Set(ctx, s, "marker", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, Delete(ctx, s, "marker"))

	_, err = Get(ctx, s, "marker")
	require.ErrorIs(t, err, rbac.ErrNotFound)
}

func TestJSONRoundTrip(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	type marker struct {
		At    time.Time `json:"at"`
		Posts int       `json:"posts"`
	}

	var got marker

	found, err := GetJSON(ctx, s, "import", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := marker{At: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Posts: 42}
	require.NoError(t, SetJSON(ctx, s, "import", want))

	found, err = GetJSON(ctx, s, "import", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want.Posts, got.Posts)
	assert.True(t, want.At.Equal(got.At))

	_, err = Set(ctx, s, "broken", []byte("{"))
	require.NoError(t, err)

	found, err = GetJSON(ctx, s, "broken", &got)
	require.Error(t, err)
	assert.True(t, found)
}
