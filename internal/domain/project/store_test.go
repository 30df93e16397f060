package project

import (
	"context"
	"strings"
	"testing"

	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQL(context.Background(), DriverSQLite, ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func strPtr(s string) *string { return &s }

func TestStoreContract(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("create and get", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				p, err := s.Create(ctx, Input{Name: "  adder  ", Code: "function add(a,b){return a+b}", TestCode: "it('x',()=>{})"})
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(p.ID, "proj_"))
				assert.Equal(t, "adder", p.Name)
				assert.Equal(t, LanguageJavaScript, p.Language)
				assert.Equal(t, p.CreatedAt, p.UpdatedAt)

				got, err := s.Get(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, *p, *got)

				byName, err := s.GetByName(ctx, "adder")
				require.NoError(t, err)
				assert.Equal(t, p.ID, byName.ID)
			})

			t.Run("missing", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				_, err := s.Get(ctx, "proj_missing")
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = s.GetByName(ctx, "nobody")
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = s.Update(ctx, "proj_missing", Patch{Name: strPtr("x")})
				assert.ErrorIs(t, err, ErrNotFound)
				assert.ErrorIs(t, s.Delete(ctx, "proj_missing"), ErrNotFound)
			})

			t.Run("validation", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				tests := []struct {
					name  string
					input Input
				}{
					{"empty name", Input{Name: "   "}},
					{"long name", Input{Name: strings.Repeat("n", utils.MaxNameLength+1)}},
					{"bad language", Input{Name: "x", Language: "python"}},
					{"huge code", Input{Name: "x", Code: strings.Repeat("a", utils.MaxCodeSize+1)}},
				}
				for _, tt := range tests {
					_, err := s.Create(ctx, tt.input)
					assert.ErrorIs(t, err, utils.ErrInvalid, tt.name)
				}

				n, err := s.Count(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)
			})

			t.Run("list newest first", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				for _, n := range []string{"first", "second", "third"} {
					_, err := s.Create(ctx, Input{Name: n})
					require.NoError(t, err)
				}

				projects, err := s.List(ctx)
				require.NoError(t, err)
				require.Len(t, projects, 3)
				assert.Equal(t, "third", projects[0].Name)
				assert.Equal(t, "first", projects[2].Name)

				n, err := s.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, 3, n)
			})

			t.Run("empty list is not nil", func(t *testing.T) {
				projects, err := open(t).List(context.Background())
				require.NoError(t, err)
				assert.NotNil(t, projects)
				assert.Empty(t, projects)
			})

			t.Run("update", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				p, err := s.Create(ctx, Input{Name: "calc", Code: "old"})
				require.NoError(t, err)

				ts := LanguageTypeScript
				updated, err := s.Update(ctx, p.ID, Patch{Code: strPtr("new"), Language: &ts})
				require.NoError(t, err)
				assert.Equal(t, "calc", updated.Name)
				assert.Equal(t, "new", updated.Code)
				assert.Equal(t, LanguageTypeScript, updated.Language)
				assert.GreaterOrEqual(t, updated.UpdatedAt, p.UpdatedAt)
				assert.Equal(t, p.CreatedAt, updated.CreatedAt)

				got, err := s.Get(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, "new", got.Code)

				_, err = s.Update(ctx, p.ID, Patch{Name: strPtr("")})
				assert.ErrorIs(t, err, utils.ErrInvalid)

				got, err = s.Get(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, "calc", got.Name)
			})

			t.Run("delete", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				p, err := s.Create(ctx, Input{Name: "gone"})
				require.NoError(t, err)
				require.NoError(t, s.Delete(ctx, p.ID))

				_, err = s.Get(ctx, p.ID)
				assert.ErrorIs(t, err, ErrNotFound)
				n, err := s.Count(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)
			})
		})
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Create(context.Background(), Input{Name: "x"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.Create(ctx, Input{Name: "orig"})
	require.NoError(t, err)
	p.Name = "mutated"

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "orig", got.Name)
}

func TestSQLiteFilePersists(t *testing.T) {
	ctx := context.Background()
	dsn := t.TempDir() + "/data/projects.db"

	s, err := OpenSQL(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	p, err := s.Create(ctx, Input{Name: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must not re-run migrations destructively
	s, err = OpenSQL(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	s.Close()

	_, err = NewStore(ctx, "mongo", "")
	assert.Error(t, err)
}
