package http

import (
	"encoding/json"
	"net/http"

	"github.com/studyline/studyline-courses/internal/course"
)

func ListCourseLessonsHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		lessons, err := svc.LessonsByCourse(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if lessons == nil {
			lessons = []course.Lesson{}
		}
		writeJSON(w, http.StatusOK, lessons)
	}
}

func CreateLessonHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		var in course.LessonInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		l, err := svc.CreateLesson(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func GetLessonHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "lessonID")
		if !ok {
			http.Error(w, "bad lesson id", http.StatusBadRequest)
			return
		}
		l, err := svc.GetLesson(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}
