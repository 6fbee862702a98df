package course

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Mirror is the optional write-through of course records to a relational
// store. The in-memory store stays the read-of-record; mirror failures are
// logged and never surfaced to the caller.
type Mirror interface {
	UpsertCourse(ctx context.Context, c Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

// EventSink records domain events (completions, submissions, deletions).
// Best-effort, same policy as Mirror.
type EventSink interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// Service owns the catalog, the completion tracker, the test scorer and the
// cascade-delete coordinator. mirror and events may be nil.
type Service struct {
	store  Store
	mirror Mirror
	events EventSink
}

func NewService(store Store, mirror Mirror, events EventSink) *Service {
	return &Service{store: store, mirror: mirror, events: events}
}

func (s *Service) mirrorUpsert(ctx context.Context, c Course) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.UpsertCourse(ctx, c); err != nil {
		log.Printf("course mirror upsert %s: %v", c.ID, err)
	}
}

func (s *Service) mirrorDelete(ctx context.Context, id uuid.UUID) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.DeleteCourse(ctx, id); err != nil {
		log.Printf("course mirror delete %s: %v", id, err)
	}
}

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, data); err != nil {
		log.Printf("event %s %s: %v", typ, key, err)
	}
}

// ---------- courses ----------

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
}

func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Course{}, invalid("title", "required")
	}
	c := Course{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		IsPublished: in.IsPublished,
	}
	if err := s.store.PutCourse(c); err != nil {
		return Course{}, err
	}
	s.mirrorUpsert(ctx, c)
	return c, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id uuid.UUID, in CourseInput) (Course, error) {
	c, err := s.store.GetCourse(id)
	if err != nil {
		return Course{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Course{}, invalid("title", "required")
	}
	c.Title = title
	c.Description = strings.TrimSpace(in.Description)
	c.IsPublished = in.IsPublished
	if err := s.store.PutCourse(c); err != nil {
		return Course{}, err
	}
	s.mirrorUpsert(ctx, c)
	return c, nil
}

func (s *Service) GetCourse(id uuid.UUID) (Course, error) {
	return s.store.GetCourse(id)
}

// ListCourses filters by a case-insensitive substring over title and
// description when q is non-empty.
func (s *Service) ListCourses(q string) ([]Course, error) {
	all, err := s.store.ListCourses()
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := make([]Course, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteCourse removes the course together with its lessons, their tests and
// all results for those tests, then scrubs every user's completion sets.
// Dependent rows go first so a concurrent reader never sees a course whose
// children already dangle. No rollback: a failure partway leaves a partially
// deleted catalog.
func (s *Service) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetCourse(id); err != nil {
		return err
	}

	lessons, err := s.store.LessonsByCourse(id)
	if err != nil {
		return err
	}
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	var testIDs []uuid.UUID
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
		if t, ok := s.store.TestByLesson(l.ID); ok {
			testIDs = append(testIDs, t.ID)
		}
	}

	for _, tid := range testIDs {
		if err := s.store.DeleteResultsByTest(tid); err != nil {
			return err
		}
		if err := s.store.DeleteTest(tid); err != nil {
			return err
		}
	}
	for _, lid := range lessonIDs {
		if err := s.store.DeleteLesson(lid); err != nil {
			return err
		}
	}
	if err := s.store.DeleteCourse(id); err != nil {
		return err
	}
	if err := s.store.ScrubCompletion(id, lessonIDs); err != nil {
		return err
	}

	s.mirrorDelete(ctx, id)
	s.emit(ctx, "course_deleted", id.String(), map[string]any{
		"lessons": len(lessonIDs),
		"tests":   len(testIDs),
	})
	return nil
}

// ---------- lessons ----------

type LessonInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// ParseOrder turns a form field into a lesson order, defaulting to 1 on
// empty or unparseable input. The default is silent: the field never
// produces a validation error.
func ParseOrder(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

func (s *Service) CreateLesson(ctx context.Context, courseID uuid.UUID, in LessonInput) (Lesson, error) {
	if _, err := s.store.GetCourse(courseID); err != nil {
		return Lesson{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Lesson{}, invalid("title", "required")
	}
	order := in.Order
	if order == 0 {
		order = 1
	}
	l := Lesson{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    title,
		Content:  strings.TrimSpace(in.Content),
		Order:    order,
	}
	if err := s.store.PutLesson(l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *Service) GetLesson(id uuid.UUID) (Lesson, error) {
	return s.store.GetLesson(id)
}

func (s *Service) LessonsByCourse(courseID uuid.UUID) ([]Lesson, error) {
	if _, err := s.store.GetCourse(courseID); err != nil {
		return nil, err
	}
	return s.store.LessonsByCourse(courseID)
}

// ---------- tests ----------

// TestInput is the authoring form for a lesson's single-question test:
// up to three option slots, exactly one marked correct by 1-based index.
type TestInput struct {
	Title        string   `json:"title"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Correct      int      `json:"correct"` // 1-based slot index
}

// UpsertLessonTest creates or redefines the lesson's test. Redefining keeps
// the test id and lesson association but purges every prior result for it:
// fresh test content invalidates old scores.
func (s *Service) UpsertLessonTest(ctx context.Context, lessonID uuid.UUID, in TestInput) (Test, error) {
	if _, err := s.store.GetLesson(lessonID); err != nil {
		return Test{}, err
	}
	title := strings.TrimSpace(in.Title)
	questionText := strings.TrimSpace(in.QuestionText)
	if title == "" || questionText == "" {
		return Test{}, invalid("test", "title/question text required")
	}

	var options []AnswerOption
	for idx, text := range in.Options {
		if idx >= 3 {
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, AnswerOption{
			ID:        uuid.New(),
			Text:      text,
			IsCorrect: idx+1 == in.Correct,
		})
	}
	if len(options) < 2 {
		return Test{}, invalid("options", "at least two options required")
	}

	testID := uuid.New()
	replaced := false
	if existing, ok := s.store.TestByLesson(lessonID); ok {
		testID = existing.ID
		replaced = true
		if err := s.store.DeleteResultsByTest(testID); err != nil {
			return Test{}, err
		}
	}

	t := Test{
		ID:       testID,
		LessonID: lessonID,
		Title:    title,
		Questions: []Question{{
			ID:      uuid.New(),
			Text:    questionText,
			Options: options,
		}},
	}
	if err := s.store.PutTest(t); err != nil {
		return Test{}, err
	}
	if replaced {
		s.emit(ctx, "test_replaced", testID.String(), map[string]any{
			"lesson_id": lessonID.String(),
		})
	}
	return t, nil
}

func (s *Service) GetTest(id uuid.UUID) (Test, error) {
	return s.store.GetTest(id)
}

// GetTestForLesson fails with ErrTestNotFound when the lesson has no test.
func (s *Service) GetTestForLesson(lessonID uuid.UUID) (Test, error) {
	t, ok := s.store.TestByLesson(lessonID)
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

// FindTestForLesson is the no-error variant; absence is a normal outcome.
func (s *Service) FindTestForLesson(lessonID uuid.UUID) (Test, bool) {
	return s.store.TestByLesson(lessonID)
}

// SubmitTest scores answers (question id -> selected option id) against the
// test. Missing or unknown selections are simply not counted. The result
// overwrites any previous one for the same (user, test) pair.
func (s *Service) SubmitTest(ctx context.Context, testID uuid.UUID, userID string, answers map[uuid.UUID]uuid.UUID) (TestResult, error) {
	t, err := s.store.GetTest(testID)
	if err != nil {
		return TestResult{}, err
	}

	total := len(t.Questions)
	correct := 0
	for _, q := range t.Questions {
		selected, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == selected && o.IsCorrect {
				correct++
				break
			}
		}
	}

	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	r := TestResult{
		TestID:         t.ID,
		UserID:         userID,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Score:          score,
	}
	if err := s.store.PutResult(r); err != nil {
		return TestResult{}, err
	}
	s.emit(ctx, "test_submitted", t.ID.String(), map[string]any{
		"user_id": userID,
		"score":   score,
	})
	return r, nil
}

func (s *Service) GetResult(userID string, testID uuid.UUID) (TestResult, error) {
	return s.store.GetResult(userID, testID)
}

// ---------- completion tracking ----------

// CompleteLesson marks the lesson done for the user and recomputes the
// owning course's completion.
func (s *Service) CompleteLesson(ctx context.Context, userID string, lessonID uuid.UUID) error {
	l, err := s.store.GetLesson(lessonID)
	if err != nil {
		return err
	}
	if err := s.store.MarkLessonCompleted(userID, lessonID); err != nil {
		return err
	}
	s.emit(ctx, "lesson_completed", lessonID.String(), map[string]any{
		"user_id": userID,
	})
	return s.RecomputeCourseCompletion(ctx, userID, l.CourseID)
}

// RecomputeCourseCompletion marks the course complete for the user when
// every one of its lessons is in the user's completed-lesson set. A course
// with zero lessons is never complete. Idempotent and monotonic: once
// marked, only a cascade delete removes the course from the set.
func (s *Service) RecomputeCourseCompletion(ctx context.Context, userID string, courseID uuid.UUID) error {
	if _, err := s.store.GetCourse(courseID); err != nil {
		return err
	}
	lessons, err := s.store.LessonsByCourse(courseID)
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		return nil
	}
	done, err := s.store.CompletedLessons(userID)
	if err != nil {
		return err
	}
	for _, l := range lessons {
		if !done[l.ID] {
			return nil
		}
	}
	already, err := s.store.IsCourseCompleted(userID, courseID)
	if err != nil {
		return err
	}
	if err := s.store.MarkCourseCompleted(userID, courseID); err != nil {
		return err
	}
	if !already {
		s.emit(ctx, "course_completed", courseID.String(), map[string]any{
			"user_id": userID,
		})
	}
	return nil
}

// CourseProgress reports the user's standing in a course for UI rendering.
func (s *Service) CourseProgress(userID string, courseID uuid.UUID) (Progress, error) {
	if _, err := s.store.GetCourse(courseID); err != nil {
		return Progress{}, err
	}
	lessons, err := s.store.LessonsByCourse(courseID)
	if err != nil {
		return Progress{}, err
	}
	done, err := s.store.CompletedLessons(userID)
	if err != nil {
		return Progress{}, err
	}
	completed, err := s.store.IsCourseCompleted(userID, courseID)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{
		CourseID:         courseID,
		UserID:           userID,
		CompletedLessons: []uuid.UUID{},
		Completed:        completed,
		CanComplete:      len(lessons) > 0,
	}
	for _, l := range lessons {
		if done[l.ID] {
			p.CompletedLessons = append(p.CompletedLessons, l.ID)
		} else {
			p.CanComplete = false
		}
	}
	return p, nil
}
