package webui

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyline/studyline-courses/internal/course"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler renders the server-side HTML surface: course browsing for
// learners and authoring forms for teachers.
type Handler struct {
	Svc         *course.Service
	Tmpl        *template.Template
	DefaultUser string
}

func NewHandler(svc *course.Service, defaultUser string) *Handler {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}
	return &Handler{Svc: svc, Tmpl: tmpl, DefaultUser: defaultUser}
}

// Mount attaches all UI routes.
func Mount(r chi.Router, h *Handler) {
	r.Get("/", h.Courses)
	r.Get("/ui/courses", h.Courses)
	r.Get("/ui/courses/{courseID}", h.CourseDetail)
	r.Post("/ui/courses/{courseID}/complete", h.CompleteCourse)
	r.Get("/ui/lessons/{lessonID}", h.LessonDetail)
	r.Get("/ui/lessons/{lessonID}/test", h.LessonTest)
	r.Post("/ui/tests/{testID}/submit", h.SubmitTest)

	r.Get("/ui/teacher/courses/new", h.NewCourseForm)
	r.Post("/ui/teacher/courses/new", h.CreateCourse)
	r.Get("/ui/teacher/courses/{courseID}/edit", h.EditCourseForm)
	r.Post("/ui/teacher/courses/{courseID}/edit", h.UpdateCourse)
	r.Post("/ui/teacher/courses/{courseID}/delete", h.DeleteCourse)
	r.Get("/ui/teacher/courses/{courseID}/lessons/new", h.NewLessonForm)
	r.Post("/ui/teacher/courses/{courseID}/lessons/new", h.CreateLesson)
	r.Get("/ui/teacher/lessons/{lessonID}/test/edit", h.EditTestForm)
	r.Post("/ui/teacher/lessons/{lessonID}/test/edit", h.UpsertTest)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	if err := h.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func (h *Handler) user(r *http.Request) string {
	if v := r.URL.Query().Get("user_id"); v != "" {
		return v
	}
	if v := r.FormValue("user_id"); v != "" {
		return v
	}
	return h.DefaultUser
}

func pathUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

// ---------- learner pages ----------

type coursesPage struct {
	Title   string
	Query   string
	Courses []course.Course
}

func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	list, err := h.Svc.ListCourses(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.render(w, "courses.html", coursesPage{Title: "Courses", Query: q, Courses: list})
}

type courseDetailPage struct {
	Title            string
	Course           course.Course
	Lessons          []course.Lesson
	UserID           string
	IsCompleted      bool
	CanComplete      bool
	CompletedLessons map[uuid.UUID]bool
}

func (h *Handler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	user := h.user(r)
	lessons, err := h.Svc.LessonsByCourse(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p, err := h.Svc.CourseProgress(user, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doneSet := make(map[uuid.UUID]bool, len(p.CompletedLessons))
	for _, lid := range p.CompletedLessons {
		doneSet[lid] = true
	}
	h.render(w, "course_detail.html", courseDetailPage{
		Title:            c.Title,
		Course:           c,
		Lessons:          lessons,
		UserID:           user,
		IsCompleted:      p.Completed,
		CanComplete:      p.CanComplete,
		CompletedLessons: doneSet,
	})
}

func (h *Handler) CompleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	user := h.user(r)
	if err := h.Svc.RecomputeCourseCompletion(r.Context(), user, id); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/ui/courses/"+id.String()+"?user_id="+user, http.StatusFound)
}

type lessonPage struct {
	Title       string
	Course      course.Course
	Lesson      course.Lesson
	UserID      string
	HasTest     bool
	SavedResult *course.TestResult
}

func (h *Handler) LessonDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	l, err := h.Svc.GetLesson(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(l.CourseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	user := h.user(r)
	page := lessonPage{Title: l.Title, Course: c, Lesson: l, UserID: user}
	if t, found := h.Svc.FindTestForLesson(id); found {
		page.HasTest = true
		if res, err := h.Svc.GetResult(user, t.ID); err == nil {
			page.SavedResult = &res
		}
	}
	h.render(w, "lesson_detail.html", page)
}

type testPage struct {
	Title  string
	Course course.Course
	Lesson course.Lesson
	Test   course.Test
	UserID string
}

// LessonTest marks the lesson complete for the user, recomputes the course,
// then renders the lesson's test. The original flow treats opening the test
// as finishing the lesson.
func (h *Handler) LessonTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	l, err := h.Svc.GetLesson(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(l.CourseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	user := h.user(r)
	if err := h.Svc.CompleteLesson(r.Context(), user, id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	t, err := h.Svc.GetTestForLesson(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.render(w, "test_detail.html", testPage{Title: t.Title, Course: c, Lesson: l, Test: t, UserID: user})
}

type resultPage struct {
	Title  string
	Course course.Course
	Lesson course.Lesson
	Result course.TestResult
}

func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "testID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user := h.user(r)
	t, err := h.Svc.GetTest(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// One radio group per question, named q_<questionID>.
	answers := map[uuid.UUID]uuid.UUID{}
	for _, q := range t.Questions {
		raw := r.FormValue("q_" + q.ID.String())
		if raw == "" {
			continue
		}
		optID, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		answers[q.ID] = optID
	}

	res, err := h.Svc.SubmitTest(r.Context(), id, user, answers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	l, err := h.Svc.GetLesson(t.LessonID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(l.CourseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.render(w, "test_result.html", resultPage{Title: "Test result", Course: c, Lesson: l, Result: res})
}

// ---------- teacher forms ----------

type courseFormPage struct {
	Title  string
	Mode   string // create|edit
	Error  string
	Course *course.Course
}

func (h *Handler) NewCourseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "course_form.html", courseFormPage{Title: "New course", Mode: "create"})
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	in := course.CourseInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		IsPublished: r.FormValue("is_published") == "on",
	}
	c, err := h.Svc.CreateCourse(r.Context(), in)
	if err != nil {
		h.render(w, "course_form.html", courseFormPage{
			Title: "New course", Mode: "create", Error: "Course title is required",
		})
		return
	}
	http.Redirect(w, r, "/ui/courses/"+c.ID.String(), http.StatusFound)
}

func (h *Handler) EditCourseForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.render(w, "course_form.html", courseFormPage{Title: "Edit course", Mode: "edit", Course: &c})
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	in := course.CourseInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		IsPublished: r.FormValue("is_published") == "on",
	}
	updated, err := h.Svc.UpdateCourse(r.Context(), id, in)
	if err != nil {
		h.render(w, "course_form.html", courseFormPage{
			Title: "Edit course", Mode: "edit", Error: "Course title is required", Course: &c,
		})
		return
	}
	http.Redirect(w, r, "/ui/courses/"+updated.ID.String(), http.StatusFound)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.Svc.DeleteCourse(r.Context(), id); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/ui/courses", http.StatusFound)
}

type lessonFormPage struct {
	Title        string
	Course       course.Course
	DefaultOrder int
	Error        string
}

func (h *Handler) NewLessonForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lessons, _ := h.Svc.LessonsByCourse(id)
	h.render(w, "lesson_form.html", lessonFormPage{
		Title: "New lesson", Course: c, DefaultOrder: len(lessons) + 1,
	})
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	in := course.LessonInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Order:   course.ParseOrder(r.FormValue("order")),
	}
	if _, err := h.Svc.CreateLesson(r.Context(), id, in); err != nil {
		h.render(w, "lesson_form.html", lessonFormPage{
			Title: "New lesson", Course: c, DefaultOrder: in.Order,
			Error: "Lesson title is required",
		})
		return
	}
	http.Redirect(w, r, "/ui/courses/"+id.String(), http.StatusFound)
}

type testFormPage struct {
	Title        string
	Course       course.Course
	Lesson       course.Lesson
	TestTitle    string
	QuestionText string
	Opt1         string
	Opt2         string
	Opt3         string
	CorrectNum   int
	Error        string
}

func (h *Handler) EditTestForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	l, err := h.Svc.GetLesson(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(l.CourseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page := testFormPage{Title: "Lesson test", Course: c, Lesson: l, CorrectNum: 1}
	if existing, found := h.Svc.FindTestForLesson(id); found && len(existing.Questions) > 0 {
		q := existing.Questions[0]
		page.TestTitle = existing.Title
		page.QuestionText = q.Text
		opts := [3]string{}
		for i, o := range q.Options {
			if i >= 3 {
				break
			}
			opts[i] = o.Text
			if o.IsCorrect {
				page.CorrectNum = i + 1
			}
		}
		page.Opt1, page.Opt2, page.Opt3 = opts[0], opts[1], opts[2]
	}
	h.render(w, "test_form.html", page)
}

func (h *Handler) UpsertTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	l, err := h.Svc.GetLesson(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.Svc.GetCourse(l.CourseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	correct, err := strconv.Atoi(r.FormValue("correct_opt"))
	if err != nil || correct < 1 {
		correct = 1
	}
	in := course.TestInput{
		Title:        r.FormValue("test_title"),
		QuestionText: r.FormValue("question_text"),
		Options: []string{
			r.FormValue("opt1"),
			r.FormValue("opt2"),
			r.FormValue("opt3"),
		},
		Correct: correct,
	}
	if _, err := h.Svc.UpsertLessonTest(r.Context(), id, in); err != nil {
		msg := "Test title and question text are required"
		var ve *course.ValidationError
		if errors.As(err, &ve) && ve.Field == "options" {
			msg = "At least two answer options are required"
		}
		h.render(w, "test_form.html", testFormPage{
			Title: "Lesson test", Course: c, Lesson: l,
			TestTitle: in.Title, QuestionText: in.QuestionText,
			Opt1: in.Options[0], Opt2: in.Options[1], Opt3: in.Options[2],
			CorrectNum: correct, Error: msg,
		})
		return
	}
	http.Redirect(w, r, "/ui/lessons/"+id.String(), http.StatusFound)
}
