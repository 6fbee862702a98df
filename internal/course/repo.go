package course

import "github.com/google/uuid"

// Store is the catalog plus per-user completion state. The in-memory
// implementation is the read-of-record; relational mirroring is a
// side-channel owned by the service, not the store.
type Store interface {
	PutCourse(c Course) error
	GetCourse(id uuid.UUID) (Course, error)
	DeleteCourse(id uuid.UUID) error
	ListCourses() ([]Course, error)

	PutLesson(l Lesson) error
	GetLesson(id uuid.UUID) (Lesson, error)
	DeleteLesson(id uuid.UUID) error
	// LessonsByCourse returns the course's lessons sorted by Order.
	LessonsByCourse(courseID uuid.UUID) ([]Lesson, error)

	PutTest(t Test) error
	GetTest(id uuid.UUID) (Test, error)
	DeleteTest(id uuid.UUID) error
	// TestByLesson is the found-flag lookup; absence is not an error.
	TestByLesson(lessonID uuid.UUID) (Test, bool)

	PutResult(r TestResult) error
	GetResult(userID string, testID uuid.UUID) (TestResult, error)
	DeleteResultsByTest(testID uuid.UUID) error

	MarkLessonCompleted(userID string, lessonID uuid.UUID) error
	MarkCourseCompleted(userID string, courseID uuid.UUID) error
	// CompletedLessons returns a copy of the user's completed-lesson set.
	CompletedLessons(userID string) (map[uuid.UUID]bool, error)
	IsCourseCompleted(userID string, courseID uuid.UUID) (bool, error)
	// ScrubCompletion drops the given course and lesson ids from every
	// user's completion sets after a cascade delete.
	ScrubCompletion(courseID uuid.UUID, lessonIDs []uuid.UUID) error
}
