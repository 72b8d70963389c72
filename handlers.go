package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"vmxio.com/sop-cards/course"
	"vmxio.com/sop-cards/generate"
	"vmxio.com/sop-cards/logger"
)

// App carries what the handlers share.
type App struct {
	Session   *Session
	Store     Store
	Generator generate.Generator
	Log       *logger.Logger
}

/*** Errors ***/

func abortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// writeError maps domain errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	var gerr *generate.Error
	switch {
	case errors.As(err, &gerr):
		switch gerr.Kind {
		case generate.KindTimeout:
			abortWithError(c, http.StatusGatewayTimeout, "generation_timeout", "generation timed out")
		case generate.KindConfig:
			abortWithError(c, http.StatusServiceUnavailable, "generation_unavailable", "generation is not configured")
		case generate.KindParse:
			abortWithError(c, http.StatusBadGateway, "generation_parse", "generated content is not valid JSON")
		default:
			abortWithError(c, http.StatusBadGateway, "generation_upstream", "generation service failed")
		}
	case errors.Is(err, ErrGenerationBusy):
		abortWithError(c, http.StatusConflict, "generation_busy", err.Error())
	case errors.Is(err, errBadIndex):
		abortWithError(c, http.StatusBadRequest, "bad_index", err.Error())
	case errors.Is(err, course.ErrIndexOutOfRange):
		abortWithError(c, http.StatusNotFound, "index_out_of_range", err.Error())
	case errors.Is(err, course.ErrUnknownField):
		abortWithError(c, http.StatusBadRequest, "unknown_field", err.Error())
	case errors.Is(err, course.ErrUnknownVariant):
		abortWithError(c, http.StatusBadRequest, "unknown_variant", err.Error())
	case errors.Is(err, course.ErrInvalidValue):
		abortWithError(c, http.StatusUnprocessableEntity, "invalid_value", err.Error())
	case errors.Is(err, course.ErrWrongCardType):
		abortWithError(c, http.StatusUnprocessableEntity, "wrong_card_type", err.Error())
	case errors.Is(err, course.ErrWrongVariant):
		abortWithError(c, http.StatusUnprocessableEntity, "wrong_variant", err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "internal", "internal error")
	}
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, http.StatusBadRequest, "bad_request", "bad request")
}

// indexParam reads a non-negative integer path parameter.
func indexParam(c *gin.Context, name string) (int, bool) {
	n, err := parseIndex(c.Param(name))
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	return n, true
}

// applyEdit runs op on the session document and answers with the result.
func applyEdit(c *gin.Context, app *App, op func(course.Course) (course.Course, error)) {
	doc, err := app.Session.Apply(op)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

/*** Document ***/

func GetCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Session.Snapshot())
	}
}

// ReplaceCourse accepts any JSON document and normalizes it.
func ReplaceCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badRequest(c, err)
			return
		}
		doc, repairs, err := course.NormalizeJSON(data)
		if err != nil {
			badRequest(c, err)
			return
		}
		logRepairs(app.Log, repairs, "request")
		c.JSON(http.StatusOK, app.Session.Replace(doc))
	}
}

type GenerateReq struct {
	Text string `json:"text" binding:"required"`
}

// GenerateCourse replaces the session document with a generated draft. On any
// failure the document is left as it was.
func GenerateCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := app.Session.BeginGeneration(); err != nil {
			writeError(c, err)
			return
		}
		defer app.Session.EndGeneration()

		raw, err := app.Generator.Generate(c.Request.Context(), req.Text)
		if err != nil {
			app.Log.Warn("generation failed", "error", err, "request_id", c.GetString("requestID"))
			writeError(c, err)
			return
		}
		doc, repairs := course.NormalizeReport(raw)
		logRepairs(app.Log, repairs, "generation")
		app.Log.Info("course generated", "cards", len(doc.Cards), "repairs", len(repairs))
		c.JSON(http.StatusOK, app.Session.Replace(doc))
	}
}

// SaveCourse writes the session document to the store. A failed save keeps
// the session document.
func SaveCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := app.Session.Snapshot()
		if err := app.Store.Save(c.Request.Context(), doc); err != nil {
			app.Log.Error("save course failed", "error", err)
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "save_failed", "could not save the course")
			return
		}
		c.JSON(http.StatusOK, gin.H{"saved": true, "cards": len(doc.Cards)})
	}
}

// ReloadCourse discards unsaved edits.
func ReloadCourse(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := app.Store.Load(c.Request.Context())
		c.JSON(http.StatusOK, app.Session.Replace(doc))
	}
}

type TitleReq struct {
	Title *string `json:"title" binding:"required"`
}

func SetTitle(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TitleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.SetTitle(doc, *req.Title), nil
		})
	}
}

/*** Cards ***/

type NewCardReq struct {
	Type    string `json:"type" binding:"required,oneof=info quiz"`
	Variant string `json:"variant"`
	// Index inserts at a position instead of appending.
	Index *int `json:"index" binding:"omitempty,min=0"`
}

func AddCard(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NewCardReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		t, _ := course.ParseCardType(req.Type)
		v := course.DefaultVariant()
		if t == course.TypeInfo && req.Variant != "" {
			parsed, ok := course.ParseVariant(req.Variant)
			if !ok {
				writeError(c, course.ErrUnknownVariant)
				return
			}
			v = parsed
		}
		card := course.NewCard(t, v)
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			out := course.InsertCard(doc, card)
			if req.Index == nil {
				return out, nil
			}
			return course.MoveCard(out, len(out.Cards)-1, *req.Index)
		})
	}
}

func DeleteCard(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.RemoveCard(doc, idx), nil
		})
	}
}

type MoveReq struct {
	To *int `json:"to" binding:"required"`
}

func MoveCard(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req MoveReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.MoveCard(doc, idx, *req.To)
		})
	}
}

type FieldReq struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

func SetCardField(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req FieldReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.SetCardField(doc, idx, req.Field, req.Value)
		})
	}
}

type VariantReq struct {
	Variant string `json:"variant" binding:"required"`
}

func SetCardVariant(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req VariantReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.SetCardVariant(doc, idx, course.Variant(req.Variant))
		})
	}
}

func SetNestedField(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req FieldReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		parent := c.Param("parent")
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.SetNestedField(doc, idx, parent, req.Field, req.Value)
		})
	}
}

/*** List items ***/

type ItemReq struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Color string `json:"color"`
}

// AddListItem appends an item; missing icon and color take the defaults.
func AddListItem(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		var req ItemReq
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
		item := course.DefaultListItem()
		item.Title, item.Desc = req.Title, req.Desc
		if icon, ok := course.ParseIcon(req.Icon); ok {
			item.Icon = icon
		}
		if color, ok := course.ParseColor(req.Color); ok {
			item.Color = color
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.InsertListItem(doc, idx, item)
		})
	}
}

func SetListItemField(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		item, ok := indexParam(c, "item")
		if !ok {
			return
		}
		var req FieldReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.SetListItemField(doc, idx, item, req.Field, req.Value)
		})
	}
}

func DeleteListItem(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := indexParam(c, "index")
		if !ok {
			return
		}
		item, ok := indexParam(c, "item")
		if !ok {
			return
		}
		applyEdit(c, app, func(doc course.Course) (course.Course, error) {
			return course.RemoveListItem(doc, idx, item)
		})
	}
}

/*** Preview ***/

type PreviewDTO struct {
	Title string               `json:"title"`
	Cards []course.Instruction `json:"cards"`
}

// Preview renders the unsaved session document the way the viewer would.
func Preview(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := app.Session.Snapshot()
		c.JSON(http.StatusOK, PreviewDTO{Title: doc.Title, Cards: course.RenderCourse(doc)})
	}
}
