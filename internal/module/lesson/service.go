package lesson

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/simp-lee/learnhub/internal/domain"
)

var youtubeHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com", "youtu.be"}

// lessonService implements domain.LessonService.
type lessonService struct {
	repo    domain.LessonRepository
	courses domain.CourseRepository
	domain.Lifecycle[domain.Lesson]
}

// NewLessonService creates a new LessonService. courses is used to check
// that the parent course is Active.
func NewLessonService(repo domain.LessonRepository, courses domain.CourseRepository) domain.LessonService {
	return &lessonService{repo: repo, courses: courses, Lifecycle: repo}
}

func (s *lessonService) CreateLesson(ctx context.Context, in domain.LessonInput) (*domain.Lesson, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if in.VideoFile == "" && in.VideoYoutube == "" {
		return nil, domain.NewValidationError("a video file or a YouTube link is required")
	}
	if err := validateYoutube(in.VideoYoutube); err != nil {
		return nil, err
	}
	if err := s.requireActiveCourse(ctx, in.CourseID); err != nil {
		return nil, err
	}

	l := &domain.Lesson{
		CourseID:     in.CourseID,
		Title:        in.Title,
		Description:  in.Description,
		VideoFile:    in.VideoFile,
		VideoYoutube: in.VideoYoutube,
	}
	if l.VideoFile != "" {
		l.VideoYoutube = ""
	}
	l.Status = domain.StatusActive

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLesson returns an Active lesson.
func (s *lessonService) GetLesson(ctx context.Context, id uint) (*domain.Lesson, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, domain.NewNotFoundError("lesson not found")
	}
	return l, nil
}

func (s *lessonService) ListLessons(ctx context.Context, f domain.Filter, courseID uint) (*domain.PageResult[domain.Lesson], error) {
	f.Status = domain.StatusActive
	return s.repo.Query(ctx, f, courseID)
}

func (s *lessonService) TrashedLessons(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Lesson], error) {
	f.Status = domain.StatusTrashed
	return s.repo.Query(ctx, f, 0)
}

// UpdateLesson changes an Active lesson. A video file or link in the input
// replaces the stored video of either kind; neither keeps it as is.
func (s *lessonService) UpdateLesson(ctx context.Context, id uint, in domain.LessonInput) (*domain.Lesson, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if err := validateYoutube(in.VideoYoutube); err != nil {
		return nil, err
	}

	l, err := s.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CourseID != 0 && in.CourseID != l.CourseID {
		if err := s.requireActiveCourse(ctx, in.CourseID); err != nil {
			return nil, err
		}
		l.CourseID = in.CourseID
	}

	l.Title = in.Title
	l.Description = in.Description
	switch {
	case in.VideoFile != "":
		l.VideoFile, l.VideoYoutube = in.VideoFile, ""
	case in.VideoYoutube != "":
		l.VideoFile, l.VideoYoutube = "", in.VideoYoutube
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *lessonService) requireActiveCourse(ctx context.Context, courseID uint) error {
	if courseID == 0 {
		return domain.NewValidationError("course_id is required")
	}
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !c.IsActive() {
		return domain.NewNotFoundError("course not found")
	}
	return nil
}

// validateYoutube accepts an empty link or an http(s) URL on a YouTube host.
func validateYoutube(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.NewValidationError("video_youtube must be a valid URL")
	}
	if !slices.Contains(youtubeHosts, strings.ToLower(u.Hostname())) {
		return domain.NewValidationError("video_youtube must be a YouTube link")
	}
	return nil
}
