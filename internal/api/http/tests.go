package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/studyline/studyline-courses/internal/course"
)

func GetLessonTestHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "lessonID")
		if !ok {
			http.Error(w, "bad lesson id", http.StatusBadRequest)
			return
		}
		if _, err := svc.GetLesson(id); err != nil {
			writeError(w, err)
			return
		}
		t, err := svc.GetTestForLesson(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// UpsertLessonTestHandler creates or redefines the lesson's single-question
// test. Redefinition purges prior results for the test id.
func UpsertLessonTestHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "lessonID")
		if !ok {
			http.Error(w, "bad lesson id", http.StatusBadRequest)
			return
		}
		var in course.TestInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		t, err := svc.UpsertLessonTest(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func SubmitTestHandler(svc *course.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "testID")
		if !ok {
			http.Error(w, "bad test id", http.StatusBadRequest)
			return
		}
		var req struct {
			UserID  string               `json:"user_id"`
			Answers map[string]uuid.UUID `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		user := req.UserID
		if user == "" {
			user = defaultUser
		}
		answers := make(map[uuid.UUID]uuid.UUID, len(req.Answers))
		for q, o := range req.Answers {
			qid, err := uuid.Parse(q)
			if err != nil {
				continue // invalid selections are simply not counted
			}
			answers[qid] = o
		}
		res, err := svc.SubmitTest(r.Context(), id, user, answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func GetResultHandler(svc *course.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(r, "testID")
		if !ok {
			http.Error(w, "bad test id", http.StatusBadRequest)
			return
		}
		res, err := svc.GetResult(userID(r, defaultUser), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
