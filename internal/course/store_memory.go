package course

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

type resultKey struct {
	userID string
	testID uuid.UUID
}

type memoryStore struct {
	mu      sync.RWMutex
	courses map[uuid.UUID]Course
	lessons map[uuid.UUID]Lesson
	tests   map[uuid.UUID]Test
	results map[resultKey]TestResult

	completedLessons map[string]map[uuid.UUID]bool
	completedCourses map[string]map[uuid.UUID]bool
}

func NewMemoryStore() Store {
	return &memoryStore{
		courses:          map[uuid.UUID]Course{},
		lessons:          map[uuid.UUID]Lesson{},
		tests:            map[uuid.UUID]Test{},
		results:          map[resultKey]TestResult{},
		completedLessons: map[string]map[uuid.UUID]bool{},
		completedCourses: map[string]map[uuid.UUID]bool{},
	}
}

func (m *memoryStore) PutCourse(c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

func (m *memoryStore) GetCourse(id uuid.UUID) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (m *memoryStore) DeleteCourse(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.courses, id)
	return nil
}

func (m *memoryStore) ListCourses() ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memoryStore) PutLesson(l Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[l.ID] = l
	return nil
}

func (m *memoryStore) GetLesson(id uuid.UUID) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lessons[id]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	return l, nil
}

func (m *memoryStore) DeleteLesson(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lessons, id)
	return nil
}

func (m *memoryStore) LessonsByCourse(courseID uuid.UUID) ([]Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Lesson
	for _, l := range m.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memoryStore) PutTest(t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(id uuid.UUID) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *memoryStore) DeleteTest(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tests, id)
	return nil
}

func (m *memoryStore) TestByLesson(lessonID uuid.UUID) (Test, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tests {
		if t.LessonID == lessonID {
			return t, true
		}
	}
	return Test{}, false
}

func (m *memoryStore) PutResult(r TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[resultKey{r.UserID, r.TestID}] = r
	return nil
}

func (m *memoryStore) GetResult(userID string, testID uuid.UUID) (TestResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[resultKey{userID, testID}]
	if !ok {
		return TestResult{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryStore) DeleteResultsByTest(testID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.results {
		if k.testID == testID {
			delete(m.results, k)
		}
	}
	return nil
}

func (m *memoryStore) MarkLessonCompleted(userID string, lessonID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.completedLessons[userID]
	if !ok {
		set = map[uuid.UUID]bool{}
		m.completedLessons[userID] = set
	}
	set[lessonID] = true
	return nil
}

func (m *memoryStore) MarkCourseCompleted(userID string, courseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.completedCourses[userID]
	if !ok {
		set = map[uuid.UUID]bool{}
		m.completedCourses[userID] = set
	}
	set[courseID] = true
	return nil
}

func (m *memoryStore) CompletedLessons(userID string) (map[uuid.UUID]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(m.completedLessons[userID]))
	for id := range m.completedLessons[userID] {
		out[id] = true
	}
	return out, nil
}

func (m *memoryStore) IsCourseCompleted(userID string, courseID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.completedCourses[userID][courseID], nil
}

func (m *memoryStore) ScrubCompletion(courseID uuid.UUID, lessonIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, set := range m.completedLessons {
		for _, id := range lessonIDs {
			delete(set, id)
		}
	}
	for _, set := range m.completedCourses {
		delete(set, courseID)
	}
	return nil
}
