package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository katmanının ortak sentinel hataları.
// Servisler storage motorunun kendi hatalarını değil bunları görür.
var (
	// ErrNotFound aranan kayıt yok demektir; beklenen bir sonuçtur.
	ErrNotFound = errors.New("kayıt bulunamadı")
	// ErrConflict bir unique index ihlali demektir: aynı anahtarla yarışan
	// bir yazma kazandı. Çağıran taraf mevcut satırı yeniden sorgulayarak
	// toparlanabilir (idempotent join akışı buna dayanır).
	ErrConflict = errors.New("tekillik çakışması")
)

// uniqueViolationCode Postgres'in unique_violation SQLSTATE kodu.
const uniqueViolationCode = "23505"

// classifyWriteError storage hatasını tipli sentinel'lere çevirir.
// Hata mesajı metnine asla bakılmaz: GORM'un TranslateError çevirisi
// (gorm.ErrDuplicatedKey) veya pgconn'un SQLSTATE kodu kullanılır.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrConflict
	}
	return err
}

// txFromContext transaction'lı çalışmayı destekler: context'e "tx" anahtarıyla
// bir *gorm.DB konmuşsa onu, yoksa verilen bağlantıyı döndürür.
func txFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// BaseRepository listeleme yapan repository'ler için ortak sıralama
// whitelist'ini tutar.
type BaseRepository struct {
	allowedSortColumns map[string]string
}

// SetAllowedSortColumns istemciden gelebilecek sort_by değerlerini gerçek
// sütun adlarına eşler; listede olmayanlar varsayılana düşer.
func (b *BaseRepository) SetAllowedSortColumns(columns map[string]string) {
	b.allowedSortColumns = columns
}

// ResolveSortColumn istenen alanı whitelist'ten çözer.
func (b *BaseRepository) ResolveSortColumn(requested, fallback string) string {
	if col, ok := b.allowedSortColumns[requested]; ok {
		return col
	}
	return fallback
}
