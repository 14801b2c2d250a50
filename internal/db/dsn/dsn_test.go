package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TigerArchive/TigerArchive/internal/config"
)

func TestCreate(t *testing.T) {
	testCases := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql",
			db: config.DB{
				GormEngine: config.EngineMySQL, User: "tiger", Password: "pw", Host: "db", Port: 3306,
				Name: "archive", Extras: "parseTime=true",
			},
			want: "tiger:pw@tcp(db:3306)/archive?parseTime=true",
		},
		{
			name: "postgres escapes password",
			db: config.DB{
				GormEngine: config.EnginePostgres, User: "tiger", Password: "p@ss", Host: "db", Port: 5432,
				Name: "archive", Extras: "sslmode=disable",
			},
			want: "postgres://tiger:p%40ss@db:5432/archive?sslmode=disable",
		},
		{
			name: "sqlite file",
			db:   config.DB{GormEngine: config.EngineSQLite, Name: "archive.db"},
			want: "archive.db",
		},
		{
			name: "sqlite with pragmas",
			db:   config.DB{GormEngine: config.EngineSQLite, Name: "archive.db", Extras: "_pragma=foreign_keys(1)"},
			want: "file:archive.db?_pragma=foreign_keys(1)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Create(&config.Config{DB: tc.db}))
		})
	}
}

func TestDialector(t *testing.T) {
	for _, engine := range []string{config.EngineMySQL, config.EnginePostgres, config.EngineSQLite} {
		d, err := Dialector(&config.Config{DB: config.DB{GormEngine: engine, Name: "x"}})
		require.NoError(t, err)
		assert.Equal(t, engine, d.Name())
	}

	_, err := Dialector(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnsupportedGormEngine)
}
