package http

import (
	"encoding/json"
	"net/http"

	"github.com/studyline/studyline-courses/internal/course"
)

// Handlers only — routes remain in main.go

func ListCoursesHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListCourses(r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateCourseHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in course.CourseInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c, err := svc.CreateCourse(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func GetCourseHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		c, err := svc.GetCourse(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func UpdateCourseHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		var in course.CourseInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c, err := svc.UpdateCourse(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCourseHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		if err := svc.DeleteCourse(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
