package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/studyline/studyline-courses/internal/api/http"
	"github.com/studyline/studyline-courses/internal/config"
	"github.com/studyline/studyline-courses/internal/course"
	"github.com/studyline/studyline-courses/internal/db"
	"github.com/studyline/studyline-courses/internal/eventlog"
	"github.com/studyline/studyline-courses/internal/webui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	cfg := config.FromEnv()

	// --- Optional relational mirror + event log ---
	var mirror course.Mirror
	var events course.EventSink
	if cfg.MirrorEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		mirror = course.NewSQLMirror(dbh)
		events = eventlog.NewRepo(dbh)
	}

	store := course.NewMemoryStore()
	svc := course.NewService(store, mirror, events)

	if cfg.DemoSeed {
		if err := course.SeedDemo(context.Background(), svc); err != nil {
			log.Fatalf("demo seed: %v", err)
		}
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/courses", api.ListCoursesHandler(svc))
		ar.Post("/courses", api.CreateCourseHandler(svc))
		ar.Get("/courses/{courseID}", api.GetCourseHandler(svc))
		ar.Put("/courses/{courseID}", api.UpdateCourseHandler(svc))
		ar.Delete("/courses/{courseID}", api.DeleteCourseHandler(svc))

		ar.Get("/courses/{courseID}/lessons", api.ListCourseLessonsHandler(svc))
		ar.Post("/courses/{courseID}/lessons", api.CreateLessonHandler(svc))
		ar.Get("/courses/{courseID}/progress", api.CourseProgressHandler(svc, cfg.DefaultUser))
		ar.Post("/courses/{courseID}/complete", api.CompleteCourseHandler(svc, cfg.DefaultUser))

		ar.Get("/lessons/{lessonID}", api.GetLessonHandler(svc))
		ar.Get("/lessons/{lessonID}/test", api.GetLessonTestHandler(svc))
		ar.Put("/lessons/{lessonID}/test", api.UpsertLessonTestHandler(svc))
		ar.Post("/lessons/{lessonID}/complete", api.CompleteLessonHandler(svc, cfg.DefaultUser))

		ar.Post("/tests/{testID}/submit", api.SubmitTestHandler(svc, cfg.DefaultUser))
		ar.Get("/tests/{testID}/result", api.GetResultHandler(svc, cfg.DefaultUser))
	})

	webui.Mount(r, webui.NewHandler(svc, cfg.DefaultUser))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mirror=%v, seed=%v)", cfg.HTTPAddr, cfg.MirrorEnabled, cfg.DemoSeed)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
