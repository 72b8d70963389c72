package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vmxio.com/sop-cards/course"
)

type StatsResponse struct {
	Title       string         `json:"title"`
	TotalCards  int            `json:"totalCards"`
	ByType      map[string]int `json:"byType"`
	ByVariant   map[string]int `json:"byVariant"`
	QuizOptions int            `json:"quizOptions"`
	ListItems   int            `json:"listItems"`
}

// CourseStats counts cards per type and per info variant.
func CourseStats(doc course.Course) StatsResponse {
	resp := StatsResponse{
		Title:      doc.Title,
		TotalCards: len(doc.Cards),
		ByType:     map[string]int{string(course.TypeInfo): 0, string(course.TypeQuiz): 0},
		ByVariant:  make(map[string]int),
	}
	for _, v := range course.Variants() {
		resp.ByVariant[string(v)] = 0
	}
	for _, card := range doc.Cards {
		if card.Type == course.TypeQuiz {
			resp.ByType[string(course.TypeQuiz)]++
			if card.Quiz != nil {
				resp.QuizOptions += len(card.Quiz.Options)
			}
			continue
		}
		resp.ByType[string(course.TypeInfo)]++
		if card.Info == nil {
			continue
		}
		resp.ByVariant[string(card.Info.Variant)]++
		if list, ok := card.Info.Body.(course.ListBody); ok {
			resp.ListItems += len(list.Items)
		}
	}
	return resp
}

// Stats reports on the session document, including unsaved edits.
func Stats(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, CourseStats(app.Session.Snapshot()))
	}
}
