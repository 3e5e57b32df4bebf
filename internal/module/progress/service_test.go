package progress

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/module/course"
	"github.com/simp-lee/learnhub/internal/module/lesson"
	"github.com/simp-lee/learnhub/internal/module/user"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     domain.ProgressService
	repo    domain.ProgressRepository
	lessons domain.LessonRepository
	courses domain.CourseRepository
	user    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Discount{}, &domain.Course{}, &domain.Lesson{}, &domain.LessonProgress{},
	))

	users := user.NewUserRepository(db)
	f := &fixture{
		repo:    NewProgressRepository(db),
		lessons: lesson.NewLessonRepository(db),
		courses: course.NewCourseRepository(db),
	}
	svc := NewProgressService(f.repo, f.lessons, f.courses, users).(*progressService)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc

	f.user = &domain.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: domain.RoleUser}
	f.user.Status = domain.StatusActive
	require.NoError(t, users.Create(context.Background(), f.user))
	return f
}

// courseWithLessons creates an Active course holding n Active lessons.
func (f *fixture) courseWithLessons(t *testing.T, n int) (*domain.Course, []*domain.Lesson) {
	t.Helper()
	ctx := context.Background()
	c := &domain.Course{Name: "Go", Thumbnail: "thumbnail/go.png"}
	c.Status = domain.StatusActive
	require.NoError(t, f.courses.Create(ctx, c))

	lessons := make([]*domain.Lesson, 0, n)
	for i := 0; i < n; i++ {
		l := &domain.Lesson{CourseID: c.ID, Title: "Lesson", VideoYoutube: "https://youtu.be/x"}
		l.Status = domain.StatusActive
		require.NoError(t, f.lessons.Create(ctx, l))
		lessons = append(lessons, l)
	}
	return c, lessons
}

func TestRecord_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, lessons := f.courseWithLessons(t, 1)
	l := lessons[0]

	p, err := f.svc.Record(ctx, f.user.ID, l.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Percent)
	assert.False(t, p.Completed)
	assert.Equal(t, c.ID, p.CourseID)

	p, err = f.svc.Record(ctx, f.user.ID, l.ID, 100)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.CompletedAt.Equal(fixedNow))

	p, err = f.svc.Record(ctx, f.user.ID, l.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Percent)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)

	page, err := f.svc.ListProgress(ctx, domain.Filter{Page: 1, ItemsPerPage: 10}, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total, "one row per user and lesson")
}

func TestRecord_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, lessons := f.courseWithLessons(t, 1)

	for _, pct := range []int{-1, 101} {
		_, err := f.svc.Record(ctx, f.user.ID, lessons[0].ID, pct)
		assert.True(t, domain.IsValidation(err), "percent %d", pct)
	}

	_, err := f.svc.Record(ctx, f.user.ID, 999, 50)
	assert.True(t, domain.IsNotFound(err))

	_, err = f.lessons.SoftDelete(ctx, lessons[0].ID)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, f.user.ID, lessons[0].ID, 50)
	assert.True(t, domain.IsNotFound(err))
}

func TestCourseProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, lessons := f.courseWithLessons(t, 3)

	cp, err := f.svc.CourseProgress(ctx, f.user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CourseProgress{CourseID: c.ID, TotalLessons: 3}, *cp)

	_, err = f.svc.Record(ctx, f.user.ID, lessons[0].ID, 100)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, f.user.ID, lessons[1].ID, 90)
	require.NoError(t, err)

	cp, err = f.svc.CourseProgress(ctx, f.user.ID, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cp.CompletedLessons)
	assert.Equal(t, 33, cp.Percent)

	// A trashed lesson drops out of both counts.
	_, err = f.lessons.SoftDelete(ctx, lessons[0].ID)
	require.NoError(t, err)
	cp, err = f.svc.CourseProgress(ctx, f.user.ID, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cp.TotalLessons)
	assert.EqualValues(t, 0, cp.CompletedLessons)
	assert.Equal(t, 0, cp.Percent)

	_, err = f.svc.CourseProgress(ctx, f.user.ID, 999)
	assert.True(t, domain.IsNotFound(err))
}

func TestCourseProgress_EmptyCourse(t *testing.T) {
	f := newFixture(t)
	c, _ := f.courseWithLessons(t, 0)

	cp, err := f.svc.CourseProgress(context.Background(), f.user.ID, c.ID)
	require.NoError(t, err)
	assert.Zero(t, cp.Percent)
	assert.False(t, cp.Finished())
}

func TestCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, lessons := f.courseWithLessons(t, 2)

	_, err := f.svc.Certificate(ctx, f.user.ID, c.ID)
	require.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "course is not completed")

	for _, l := range lessons {
		_, err := f.svc.Record(ctx, f.user.ID, l.ID, 100)
		require.NoError(t, err)
	}

	pdf, err := f.svc.Certificate(ctx, f.user.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestCertificate_EmptyCourseIsNotCompleted(t *testing.T) {
	f := newFixture(t)
	c, _ := f.courseWithLessons(t, 0)

	_, err := f.svc.Certificate(context.Background(), f.user.ID, c.ID)
	assert.True(t, domain.IsValidation(err))
}
