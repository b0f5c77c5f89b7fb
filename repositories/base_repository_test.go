package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil hata", nil, nil},
		{"gorm çevirisi", gorm.ErrDuplicatedKey, ErrConflict},
		{"sarılmış gorm çevirisi", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), ErrConflict},
		{"pgconn unique_violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"pgconn başka kod", &pgconn.PgError{Code: "23503"}, &pgconn.PgError{Code: "23503"}},
		{"alakasız hata", errors.New("bağlantı koptu"), errors.New("bağlantı koptu")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyWriteError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			if errors.Is(tt.want, ErrConflict) {
				assert.ErrorIs(t, got, ErrConflict)
				return
			}
			assert.Equal(t, tt.want.Error(), got.Error())
			assert.NotErrorIs(t, got, ErrConflict)
		})
	}
}

func TestResolveSortColumn(t *testing.T) {
	var base BaseRepository
	base.SetAllowedSortColumns(map[string]string{
		"created_at": "sessions.created_at",
		"title":      "sessions.title",
	})

	assert.Equal(t, "sessions.title", base.ResolveSortColumn("title", "sessions.created_at"))
	assert.Equal(t, "sessions.created_at", base.ResolveSortColumn("password", "sessions.created_at"),
		"whitelist dışı alan varsayılana düşer")
}
