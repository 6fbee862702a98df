package course

import (
	"context"
	"fmt"
)

// SeedDemo populates two published demo courses with lessons and
// single-question tests. It goes through the service so the mirror and
// event log see the records too.
func SeedDemo(ctx context.Context, svc *Service) error {
	c1, err := svc.CreateCourse(ctx, CourseInput{
		Title:       "Go for Beginners",
		Description: "Fundamentals of the Go language",
		IsPublished: true,
	})
	if err != nil {
		return fmt.Errorf("seed course: %w", err)
	}

	l1, err := svc.CreateLesson(ctx, c1.ID, LessonInput{
		Title:   "Introduction to Go",
		Content: "What Go is, where it is used, installing the toolchain and a first program.",
		Order:   1,
	})
	if err != nil {
		return fmt.Errorf("seed lesson: %w", err)
	}
	l2, err := svc.CreateLesson(ctx, c1.ID, LessonInput{
		Title:   "Types and Variables",
		Content: "Numbers, strings, slices, maps. Code examples.",
		Order:   2,
	})
	if err != nil {
		return fmt.Errorf("seed lesson: %w", err)
	}

	if _, err := svc.UpsertLessonTest(ctx, l1.ID, TestInput{
		Title:        "Quiz: Introduction to Go",
		QuestionText: "Go is a...",
		Options:      []string{"Programming language", "Operating system", "Database"},
		Correct:      1,
	}); err != nil {
		return fmt.Errorf("seed test: %w", err)
	}
	if _, err := svc.UpsertLessonTest(ctx, l2.ID, TestInput{
		Title:        "Quiz: Types and Variables",
		QuestionText: "Which of these are Go types?",
		Options:      []string{"int, string, map", "http, tcp, udp", "ssd, hdd, ram"},
		Correct:      1,
	}); err != nil {
		return fmt.Errorf("seed test: %w", err)
	}

	c2, err := svc.CreateCourse(ctx, CourseInput{
		Title:       "Web Development Basics",
		Description: "Core concepts of the web",
		IsPublished: true,
	})
	if err != nil {
		return fmt.Errorf("seed course: %w", err)
	}
	l3, err := svc.CreateLesson(ctx, c2.ID, LessonInput{
		Title:   "How the Web Works",
		Content: "HTTP, browsers, servers, the request/response cycle.",
		Order:   1,
	})
	if err != nil {
		return fmt.Errorf("seed lesson: %w", err)
	}
	if _, err := svc.UpsertLessonTest(ctx, l3.ID, TestInput{
		Title:        "Quiz: How the Web Works",
		QuestionText: "Which protocol do websites most commonly use?",
		Options:      []string{"HTTP", "FTP only", "BIOS"},
		Correct:      1,
	}); err != nil {
		return fmt.Errorf("seed test: %w", err)
	}
	return nil
}
