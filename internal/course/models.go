package course

import "github.com/google/uuid"

type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsPublished bool      `json:"is_published"`
}

type Lesson struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Order    int       `json:"order"`
}

type AnswerOption struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect bool      `json:"is_correct"`
}

type Question struct {
	ID      uuid.UUID      `json:"id"`
	Text    string         `json:"text"`
	Options []AnswerOption `json:"options"`
}

// Test is a single-question quiz attached to at most one lesson.
type Test struct {
	ID        uuid.UUID  `json:"id"`
	LessonID  uuid.UUID  `json:"lesson_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// TestResult keeps the latest submission per (user, test); a resubmission
// overwrites the previous value entirely.
type TestResult struct {
	TestID         uuid.UUID `json:"test_id"`
	UserID         string    `json:"user_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          float64   `json:"score"` // 0..100
}

// Progress is a per-user snapshot of where a user stands in a course.
type Progress struct {
	CourseID         uuid.UUID   `json:"course_id"`
	UserID           string      `json:"user_id"`
	CompletedLessons []uuid.UUID `json:"completed_lessons"`
	Completed        bool        `json:"completed"`
	CanComplete      bool        `json:"can_complete"`
}
