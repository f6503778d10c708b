package catalog

import (
	"context"
	"fmt"
	"testing"

	"kursus/services/progress-service/internal/infrastructure/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return db
}

func TestDatabaseCatalog_Resolve(t *testing.T) {
	db := newCatalogDB(t)
	repo := repository.NewCourseRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &repository.CourseRecord{
		ID:    "nextjs-dasar",
		Title: "Next.js Dasar",
		Lessons: []repository.LessonRecord{
			{ID: "pengenalan", SortOrder: 1},
			{ID: "instalasi", SortOrder: 2},
		},
	}))
	require.NoError(t, repo.Create(ctx, &repository.CourseRecord{ID: "count-only", Title: "Count", TotalLessons: 4}))

	c := NewDatabaseCatalog(repo)

	course, err := c.ResolveCourse(ctx, "nextjs-dasar")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, 2, course.TotalLessons)
	assert.Equal(t, []string{"pengenalan", "instalasi"}, course.LessonIDs)

	countOnly, err := c.ResolveCourse(ctx, "count-only")
	require.NoError(t, err)
	assert.Equal(t, 4, countOnly.TotalLessons)

	missing, err := c.ResolveCourse(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
