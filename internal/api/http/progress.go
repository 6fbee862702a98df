package http

import (
	"net/http"

	"github.com/studyline/studyline-courses/internal/course"
)

// CompleteLessonHandler marks the lesson done for the user and recomputes
// the owning course's completion, returning the fresh progress snapshot.
func CompleteLessonHandler(svc *course.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "lessonID")
		if !ok {
			http.Error(w, "bad lesson id", http.StatusBadRequest)
			return
		}
		user := userID(r, defaultUser)
		l, err := svc.GetLesson(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := svc.CompleteLesson(r.Context(), user, id); err != nil {
			writeError(w, err)
			return
		}
		p, err := svc.CourseProgress(user, l.CourseID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// CompleteCourseHandler recomputes course completion for the user. The
// course is only marked when every lesson is already done.
func CompleteCourseHandler(svc *course.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		user := userID(r, defaultUser)
		if err := svc.RecomputeCourseCompletion(r.Context(), user, id); err != nil {
			writeError(w, err)
			return
		}
		p, err := svc.CourseProgress(user, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func CourseProgressHandler(svc *course.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "courseID")
		if !ok {
			http.Error(w, "bad course id", http.StatusBadRequest)
			return
		}
		p, err := svc.CourseProgress(userID(r, defaultUser), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
