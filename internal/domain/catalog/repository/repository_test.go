package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestListEnabledPromotions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPromotionRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "promotions" WHERE is_active = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "title", "is_active", "promo_code", "promo_price"}).
			AddRow("p-1", now, now, "Tabaski", true, "TABASKI", 19900))

	promos, err := repo.ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "TABASKI", *promos[0].PromoCode)
	assert.Equal(t, int64(19900), *promos[0].PromoPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPromotionActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPromotionRepository(db)

	mock.ExpectExec(`UPDATE "promotions" SET "is_active"=\$1`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SetActive(context.Background(), "missing", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteImage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectExec(`DELETE FROM "images" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), "img-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveVideosByDisplayOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVideoRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE is_active = \$1 ORDER BY display_order ASC, created_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "title", "video_url", "is_active", "display_order"}).
			AddRow("v-1", now, now, "Témoignage", "https://youtu.be/abcdefghijk", true, 0).
			AddRow("v-2", now, now, "Avis client", "https://youtu.be/bcdefghijkl", true, 1))

	videos, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, 1, videos[1].DisplayOrder)
}
