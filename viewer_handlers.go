package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vmxio.com/sop-cards/course"
)

/*** Viewer (learner-facing, reads the saved course) ***/

type ViewerCourseDTO struct {
	Title string               `json:"title"`
	Total int                  `json:"total"`
	Cards []course.Instruction `json:"cards"`
}

type ViewerCardDTO struct {
	Page
	Card course.Instruction `json:"card"`
}

type AnswerReq struct {
	Selected string `json:"selected" binding:"required"`
}

type AnswerDTO struct {
	IsCorrect   bool   `json:"isCorrect"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

func ViewCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := app.Store.Load(c.Request.Context())
		c.JSON(http.StatusOK, ViewerCourseDTO{
			Title: doc.Title,
			Total: len(doc.Cards),
			Cards: course.RenderCourse(doc),
		})
	}
}

func ViewCard(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		doc := app.Store.Load(c.Request.Context())
		page, err := pageOf(idx, len(doc.Cards))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ViewerCardDTO{Page: page, Card: course.Render(doc.Cards[idx])})
	}
}

// AnswerQuiz checks a learner's choice. The answer and explanation are only
// revealed once a choice has been made.
func AnswerQuiz(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req AnswerReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		q, err := quizAt(app.Store.Load(c.Request.Context()), idx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, AnswerDTO{
			IsCorrect:   isCorrectChoice(req.Selected, q.Answer),
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}
}
