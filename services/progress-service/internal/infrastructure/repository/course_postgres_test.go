package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepository_GetWithLessonsOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &CourseRecord{
		ID:    "nextjs-dasar",
		Title: "Next.js Dasar",
		Lessons: []LessonRecord{
			{ID: "instalasi", Title: "Instalasi", SortOrder: 2},
			{ID: "pengenalan", Title: "Pengenalan", SortOrder: 1},
		},
	}))

	course, err := repo.GetWithLessons(ctx, "nextjs-dasar")
	require.NoError(t, err)
	require.NotNil(t, course)
	require.Len(t, course.Lessons, 2)
	assert.Equal(t, "pengenalan", course.Lessons[0].ID)
	assert.Equal(t, "instalasi", course.Lessons[1].ID)

	missing, err := repo.GetWithLessons(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCourseRepository_ReplaceSwapsLessons(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(newTestDB(t))

	require.NoError(t, repo.Replace(ctx, &CourseRecord{
		ID:      "nextjs-dasar",
		Title:   "Next.js Dasar",
		Lessons: []LessonRecord{{ID: "pengenalan", SortOrder: 1}, {ID: "lama", SortOrder: 2}},
	}))
	require.NoError(t, repo.Replace(ctx, &CourseRecord{
		ID:      "nextjs-dasar",
		Title:   "Next.js Dasar (2026)",
		Lessons: []LessonRecord{{ID: "pengenalan", SortOrder: 1}, {ID: "instalasi", SortOrder: 2}},
	}))

	course, err := repo.GetWithLessons(ctx, "nextjs-dasar")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "Next.js Dasar (2026)", course.Title)
	require.Len(t, course.Lessons, 2)
	assert.Equal(t, "instalasi", course.Lessons[1].ID)
}
