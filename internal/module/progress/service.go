package progress

import (
	"context"
	"time"

	"github.com/simp-lee/learnhub/internal/domain"
)

// progressService implements domain.ProgressService.
type progressService struct {
	repo    domain.ProgressRepository
	lessons domain.LessonRepository
	courses domain.CourseRepository
	users   domain.UserRepository
	now     func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(repo domain.ProgressRepository, lessons domain.LessonRepository, courses domain.CourseRepository, users domain.UserRepository) domain.ProgressService {
	return &progressService{repo: repo, lessons: lessons, courses: courses, users: users, now: time.Now}
}

// Record stores how far the user got through an Active lesson. Each call
// replaces the previous value; 100 marks the lesson completed.
func (s *progressService) Record(ctx context.Context, userID, lessonID uint, percent int) (*domain.LessonProgress, error) {
	if percent < 0 || percent > 100 {
		return nil, domain.NewValidationError("percent must be between 0 and 100")
	}

	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !lesson.IsActive() {
		return nil, domain.NewNotFoundError("lesson not found")
	}

	p := &domain.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		CourseID: lesson.CourseID,
		Percent:  percent,
	}
	if percent == 100 {
		at := s.now().UTC()
		p.Completed = true
		p.CompletedAt = &at
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *progressService) ListProgress(ctx context.Context, f domain.Filter, userID uint) (*domain.PageResult[domain.LessonProgress], error) {
	return s.repo.Query(ctx, f, userID)
}

// CourseProgress counts the user's completed lessons against the Active
// lessons of an Active course.
func (s *progressService) CourseProgress(ctx context.Context, userID, courseID uint) (*domain.CourseProgress, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive() {
		return nil, domain.NewNotFoundError("course not found")
	}
	return s.summarize(ctx, userID, courseID)
}

// Certificate renders a completion certificate for a finished course.
func (s *progressService) Certificate(ctx context.Context, userID, courseID uint) ([]byte, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive() {
		return nil, domain.NewNotFoundError("course not found")
	}

	cp, err := s.summarize(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !cp.Finished() {
		return nil, domain.NewValidationError("course is not completed")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pdf, err := Certificate{
		Recipient: user.Username,
		Course:    course.Name,
		Lessons:   cp.TotalLessons,
		IssuedAt:  s.now(),
	}.Render()
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to render certificate", err)
	}
	return pdf, nil
}

func (s *progressService) summarize(ctx context.Context, userID, courseID uint) (*domain.CourseProgress, error) {
	total, err := s.lessons.CountActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	done, err := s.repo.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	cp := &domain.CourseProgress{CourseID: courseID, TotalLessons: total, CompletedLessons: done}
	if total > 0 {
		cp.Percent = int(done * 100 / total)
	}
	return cp, nil
}
