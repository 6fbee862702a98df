package course

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

/* ---------------- recording event sink (in-memory fake) ---------------- */

type fakeSink struct {
	events []string
}

func (f *fakeSink) Append(ctx context.Context, typ, key string, data any) error {
	f.events = append(f.events, typ)
	return nil
}

func (f *fakeSink) has(typ string) bool {
	for _, e := range f.events {
		if e == typ {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	return NewService(NewMemoryStore(), nil, sink), sink
}

func mustCourse(t *testing.T, svc *Service, title string) Course {
	t.Helper()
	c, err := svc.CreateCourse(context.Background(), CourseInput{Title: title, IsPublished: true})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func mustLesson(t *testing.T, svc *Service, courseID uuid.UUID, title string, order int) Lesson {
	t.Helper()
	l, err := svc.CreateLesson(context.Background(), courseID, LessonInput{Title: title, Content: "...", Order: order})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return l
}

func mustTest(t *testing.T, svc *Service, lessonID uuid.UUID) Test {
	t.Helper()
	tt, err := svc.UpsertLessonTest(context.Background(), lessonID, TestInput{
		Title:        "quiz",
		QuestionText: "pick the first",
		Options:      []string{"right", "wrong", "also wrong"},
		Correct:      1,
	})
	if err != nil {
		t.Fatalf("upsert test: %v", err)
	}
	return tt
}

func correctOption(t *testing.T, q Question) uuid.UUID {
	t.Helper()
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	t.Fatal("question has no correct option")
	return uuid.Nil
}

func wrongOption(t *testing.T, q Question) uuid.UUID {
	t.Helper()
	for _, o := range q.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	t.Fatal("question has no wrong option")
	return uuid.Nil
}

/* ---------------- completion tracking ---------------- */

func TestCourseCompletedWhenAllLessonsDone(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "go basics")
	l1 := mustLesson(t, svc, c.ID, "one", 1)
	l2 := mustLesson(t, svc, c.ID, "two", 2)

	if err := svc.CompleteLesson(ctx, "user1", l1.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	p, err := svc.CourseProgress("user1", c.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Completed {
		t.Fatal("course completed with one of two lessons done")
	}

	if err := svc.CompleteLesson(ctx, "user1", l2.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	p, err = svc.CourseProgress("user1", c.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !p.Completed {
		t.Fatal("course not completed after all lessons done")
	}
	if !sink.has("course_completed") {
		t.Fatal("no course_completed event emitted")
	}
}

func TestEmptyCourseNeverCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "empty")

	if err := svc.RecomputeCourseCompletion(ctx, "user1", c.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	p, err := svc.CourseProgress("user1", c.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Completed || p.CanComplete {
		t.Fatal("course with zero lessons must never be complete")
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "idem")
	l := mustLesson(t, svc, c.ID, "only", 1)

	if err := svc.CompleteLesson(ctx, "user1", l.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if err := svc.RecomputeCourseCompletion(ctx, "user1", c.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if err := svc.RecomputeCourseCompletion(ctx, "user1", c.ID); err != nil {
		t.Fatalf("recompute again: %v", err)
	}
	p, err := svc.CourseProgress("user1", c.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !p.Completed {
		t.Fatal("course should stay completed")
	}
	// only one course_completed despite repeated recomputes
	n := 0
	for _, e := range sink.events {
		if e == "course_completed" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("course_completed emitted %d times, want 1", n)
	}
}

func TestCompletionIsPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "per user")
	l := mustLesson(t, svc, c.ID, "only", 1)

	if err := svc.CompleteLesson(ctx, "alice", l.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	pa, _ := svc.CourseProgress("alice", c.ID)
	pb, _ := svc.CourseProgress("bob", c.ID)
	if !pa.Completed {
		t.Fatal("alice should have completed the course")
	}
	if pb.Completed {
		t.Fatal("bob should not have completed the course")
	}
}

func TestCompleteUnknownLessonIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.CompleteLesson(context.Background(), "user1", uuid.New())
	if !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("err = %v, want ErrLessonNotFound", err)
	}
}

/* ---------------- test scoring ---------------- */

func TestScoring(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "scored")
	l1 := mustLesson(t, svc, c.ID, "one", 1)
	l2 := mustLesson(t, svc, c.ID, "two", 2)
	t1 := mustTest(t, svc, l1.ID)
	t2 := mustTest(t, svc, l2.ID)

	q1, q2 := t1.Questions[0], t2.Questions[0]

	cases := []struct {
		name    string
		answers map[uuid.UUID]uuid.UUID
		test    Test
		want    float64
		correct int
	}{
		{"all correct", map[uuid.UUID]uuid.UUID{q1.ID: correctOption(t, q1)}, t1, 100.0, 1},
		{"all wrong", map[uuid.UUID]uuid.UUID{q2.ID: wrongOption(t, q2)}, t2, 0.0, 0},
		{"no answers", map[uuid.UUID]uuid.UUID{}, t1, 0.0, 0},
		{"unknown option not counted", map[uuid.UUID]uuid.UUID{q1.ID: uuid.New()}, t1, 0.0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.SubmitTest(ctx, tc.test.ID, "user1", tc.answers)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if res.Score != tc.want {
				t.Fatalf("score = %v, want %v", res.Score, tc.want)
			}
			if res.CorrectAnswers != tc.correct {
				t.Fatalf("correct = %d, want %d", res.CorrectAnswers, tc.correct)
			}
		})
	}
}

func TestTwoQuestionScore(t *testing.T) {
	// A two-question test cannot be authored through the single-question
	// form, but the scorer handles it; build one directly in the store.
	store := NewMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	q1 := Question{ID: uuid.New(), Text: "q1", Options: []AnswerOption{
		{ID: uuid.New(), Text: "a", IsCorrect: true},
		{ID: uuid.New(), Text: "b"},
	}}
	q2 := Question{ID: uuid.New(), Text: "q2", Options: []AnswerOption{
		{ID: uuid.New(), Text: "a", IsCorrect: true},
		{ID: uuid.New(), Text: "b"},
	}}
	tt := Test{ID: uuid.New(), LessonID: uuid.New(), Title: "two", Questions: []Question{q1, q2}}
	if err := store.PutTest(tt); err != nil {
		t.Fatalf("put test: %v", err)
	}

	both := map[uuid.UUID]uuid.UUID{q1.ID: q1.Options[0].ID, q2.ID: q2.Options[0].ID}
	res, err := svc.SubmitTest(ctx, tt.ID, "u", both)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100.0 {
		t.Fatalf("both correct: score = %v, want 100", res.Score)
	}

	one := map[uuid.UUID]uuid.UUID{q1.ID: q1.Options[0].ID}
	res, err = svc.SubmitTest(ctx, tt.ID, "u", one)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 50.0 {
		t.Fatalf("one correct: score = %v, want 50", res.Score)
	}

	res, err = svc.SubmitTest(ctx, tt.ID, "u", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 0.0 {
		t.Fatalf("none correct: score = %v, want 0", res.Score)
	}
}

func TestZeroQuestionTestScoresZero(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, nil)
	tt := Test{ID: uuid.New(), LessonID: uuid.New(), Title: "empty"}
	if err := store.PutTest(tt); err != nil {
		t.Fatalf("put test: %v", err)
	}
	res, err := svc.SubmitTest(context.Background(), tt.ID, "u", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 0.0 || res.TotalQuestions != 0 {
		t.Fatalf("got score=%v total=%d, want 0/0", res.Score, res.TotalQuestions)
	}
}

func TestResubmissionOverwrites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "overwrite")
	l := mustLesson(t, svc, c.ID, "one", 1)
	tt := mustTest(t, svc, l.ID)
	q := tt.Questions[0]

	if _, err := svc.SubmitTest(ctx, tt.ID, "user1", map[uuid.UUID]uuid.UUID{q.ID: correctOption(t, q)}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SubmitTest(ctx, tt.ID, "user1", map[uuid.UUID]uuid.UUID{q.ID: wrongOption(t, q)}); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	res, err := svc.GetResult("user1", tt.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if res.Score != 0.0 {
		t.Fatalf("latest result score = %v, want 0 (last write wins)", res.Score)
	}
}

func TestSubmitUnknownTestIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SubmitTest(context.Background(), uuid.New(), "u", nil)
	if !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("err = %v, want ErrTestNotFound", err)
	}
}

/* ---------------- cascade delete & redefinition ---------------- */

func TestDeleteCourseCascades(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "doomed")
	l1 := mustLesson(t, svc, c.ID, "one", 1)
	l2 := mustLesson(t, svc, c.ID, "two", 2)
	tt := mustTest(t, svc, l1.ID)
	q := tt.Questions[0]

	if err := svc.CompleteLesson(ctx, "user1", l1.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if err := svc.CompleteLesson(ctx, "user1", l2.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if _, err := svc.SubmitTest(ctx, tt.ID, "user1", map[uuid.UUID]uuid.UUID{q.ID: correctOption(t, q)}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.DeleteCourse(ctx, c.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}

	if _, err := svc.GetCourse(c.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("course lookup after delete: %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.GetLesson(l1.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("lesson lookup after delete: %v, want ErrLessonNotFound", err)
	}
	if _, err := svc.GetTest(tt.ID); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("test lookup after delete: %v, want ErrTestNotFound", err)
	}
	if _, err := svc.GetResult("user1", tt.ID); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("result lookup after delete: %v, want ErrResultNotFound", err)
	}
	if !sink.has("course_deleted") {
		t.Fatal("no course_deleted event emitted")
	}
}

func TestDeleteCourseScrubsCompletion(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()
	c := mustCourse(t, svc, "scrubbed")
	l := mustLesson(t, svc, c.ID, "one", 1)

	if err := svc.CompleteLesson(ctx, "user1", l.ID); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if done, _ := store.CompletedLessons("user1"); !done[l.ID] {
		t.Fatal("lesson should be completed before delete")
	}
	if ok, _ := store.IsCourseCompleted("user1", c.ID); !ok {
		t.Fatal("course should be completed before delete")
	}

	if err := svc.DeleteCourse(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if done, _ := store.CompletedLessons("user1"); done[l.ID] {
		t.Fatal("completed-lesson set still references deleted lesson")
	}
	if ok, _ := store.IsCourseCompleted("user1", c.ID); ok {
		t.Fatal("completed-course set still references deleted course")
	}
}

func TestDeleteUnknownCourseIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteCourse(context.Background(), uuid.New())
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestRedefiningTestPurgesResults(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "redef")
	l := mustLesson(t, svc, c.ID, "one", 1)
	old := mustTest(t, svc, l.ID)
	q := old.Questions[0]

	if _, err := svc.SubmitTest(ctx, old.ID, "user1", map[uuid.UUID]uuid.UUID{q.ID: correctOption(t, q)}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	fresh, err := svc.UpsertLessonTest(ctx, l.ID, TestInput{
		Title:        "new quiz",
		QuestionText: "new question",
		Options:      []string{"a", "b", ""},
		Correct:      2,
	})
	if err != nil {
		t.Fatalf("redefine: %v", err)
	}
	if fresh.ID != old.ID {
		t.Fatalf("test id changed on redefine: %s -> %s", old.ID, fresh.ID)
	}
	if fresh.LessonID != l.ID {
		t.Fatal("lesson association changed on redefine")
	}
	if _, err := svc.GetResult("user1", old.ID); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("prior result survived redefinition: %v", err)
	}
	if !sink.has("test_replaced") {
		t.Fatal("no test_replaced event emitted")
	}
}

/* ---------------- authoring validation ---------------- */

func TestAuthoringValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCourse(t, svc, "valid")
	l := mustLesson(t, svc, c.ID, "one", 1)

	var ve *ValidationError

	if _, err := svc.CreateCourse(ctx, CourseInput{Title: "  "}); !errors.As(err, &ve) {
		t.Fatalf("blank course title: %v", err)
	}
	if _, err := svc.CreateLesson(ctx, c.ID, LessonInput{Title: ""}); !errors.As(err, &ve) {
		t.Fatalf("blank lesson title: %v", err)
	}
	if _, err := svc.UpsertLessonTest(ctx, l.ID, TestInput{
		Title: "", QuestionText: "q", Options: []string{"a", "b"}, Correct: 1,
	}); !errors.As(err, &ve) {
		t.Fatalf("blank test title: %v", err)
	}
	if _, err := svc.UpsertLessonTest(ctx, l.ID, TestInput{
		Title: "t", QuestionText: "", Options: []string{"a", "b"}, Correct: 1,
	}); !errors.As(err, &ve) {
		t.Fatalf("blank question text: %v", err)
	}
	if _, err := svc.UpsertLessonTest(ctx, l.ID, TestInput{
		Title: "t", QuestionText: "q", Options: []string{"only", "", ""}, Correct: 1,
	}); !errors.As(err, &ve) {
		t.Fatalf("single option: %v", err)
	}

	// exactly one option marked correct, by slot index among non-empty slots
	tt, err := svc.UpsertLessonTest(ctx, l.ID, TestInput{
		Title: "t", QuestionText: "q", Options: []string{"a", "", "c"}, Correct: 3,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	opts := tt.Questions[0].Options
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2 (empty slot skipped)", len(opts))
	}
	nCorrect := 0
	for _, o := range opts {
		if o.IsCorrect {
			nCorrect++
			if o.Text != "c" {
				t.Fatalf("correct option is %q, want slot 3 (%q)", o.Text, "c")
			}
		}
	}
	if nCorrect != 1 {
		t.Fatalf("%d options marked correct, want 1", nCorrect)
	}
}

func TestParseOrder(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"  ", 1},
		{"abc", 1},
		{"3", 3},
		{" 7 ", 7},
		{"0", 0},
		{"-2", -2},
	}
	for _, tc := range cases {
		if got := ParseOrder(tc.in); got != tc.want {
			t.Errorf("ParseOrder(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFindTestForLesson(t *testing.T) {
	svc, _ := newTestService(t)
	c := mustCourse(t, svc, "lookup")
	l := mustLesson(t, svc, c.ID, "one", 1)

	if _, found := svc.FindTestForLesson(l.ID); found {
		t.Fatal("found a test on a lesson without one")
	}
	if _, err := svc.GetTestForLesson(l.ID); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("err = %v, want ErrTestNotFound", err)
	}

	tt := mustTest(t, svc, l.ID)
	got, found := svc.FindTestForLesson(l.ID)
	if !found || got.ID != tt.ID {
		t.Fatalf("find after upsert: found=%v id=%s", found, got.ID)
	}
}
