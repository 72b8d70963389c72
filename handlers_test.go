package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"vmxio.com/sop-cards/course"
	"vmxio.com/sop-cards/generate"
	"vmxio.com/sop-cards/logger"
)

type fakeGenerator struct {
	raw   any
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, text string) (any, error) {
	f.calls++
	return f.raw, f.err
}

type failingStore struct{ Store }

func (failingStore) Save(ctx context.Context, c course.Course) error {
	return errors.New("disk full")
}

func newTestApp(t *testing.T, gen generate.Generator) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := &App{
		Session:   NewSession(testCourse()),
		Store:     NewFileStore(filepath.Join(t.TempDir(), "data.json"), logger.Nop()),
		Generator: gen,
		Log:       logger.Nop(),
	}
	return app, newRouter(app, nil)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCourse(t *testing.T, w *httptest.ResponseRecorder) course.Course {
	t.Helper()
	var c course.Course
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode course: %v (%s)", err, w.Body.String())
	}
	return c
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v (%s)", err, w.Body.String())
	}
	return body.Code
}

func TestEditorEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		status   int
		code     string
		validate func(t *testing.T, c course.Course)
	}{
		{
			name: "get", method: http.MethodGet, path: "/api/v1/course", status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if c.Title != "Kitchen hygiene" || len(c.Cards) != 2 {
					t.Errorf("course = %+v", c)
				}
			},
		},
		{
			name: "set title", method: http.MethodPatch, path: "/api/v1/course/title",
			body: map[string]any{"title": "Bar"}, status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if c.Title != "Bar" {
					t.Errorf("title = %q", c.Title)
				}
			},
		},
		{
			name: "add list card at front", method: http.MethodPost, path: "/api/v1/course/cards",
			body: map[string]any{"type": "info", "variant": "list_with_icons", "index": 0}, status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if len(c.Cards) != 3 || c.Cards[0].Info.Variant != course.VariantListWithIcons {
					t.Errorf("cards = %+v", c.Cards)
				}
			},
		},
		{
			name: "add card bad type", method: http.MethodPost, path: "/api/v1/course/cards",
			body: map[string]any{"type": "video"}, status: http.StatusBadRequest, code: "bad_request",
		},
		{
			name: "add card bad variant", method: http.MethodPost, path: "/api/v1/course/cards",
			body: map[string]any{"type": "info", "variant": "carousel"}, status: http.StatusBadRequest, code: "unknown_variant",
		},
		{
			name: "delete card", method: http.MethodDelete, path: "/api/v1/course/cards/0", status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if len(c.Cards) != 1 || c.Cards[0].Type != course.TypeQuiz {
					t.Errorf("cards = %+v", c.Cards)
				}
			},
		},
		{
			name: "delete stale card is a no-op", method: http.MethodDelete, path: "/api/v1/course/cards/9", status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if len(c.Cards) != 2 {
					t.Errorf("cards = %d", len(c.Cards))
				}
			},
		},
		{
			name: "bad index", method: http.MethodDelete, path: "/api/v1/course/cards/x", status: http.StatusBadRequest, code: "bad_index",
		},
		{
			name: "move card", method: http.MethodPost, path: "/api/v1/course/cards/1/move",
			body: map[string]any{"to": 0}, status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if c.Cards[0].Type != course.TypeQuiz {
					t.Errorf("first card = %s", c.Cards[0].Type)
				}
			},
		},
		{
			name: "set quiz answer", method: http.MethodPatch, path: "/api/v1/course/cards/1",
			body: map[string]any{"field": "answer", "value": "5s"}, status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				if c.Cards[1].Quiz.Answer != "5s" {
					t.Errorf("answer = %q", c.Cards[1].Quiz.Answer)
				}
			},
		},
		{
			name: "answer not an option", method: http.MethodPatch, path: "/api/v1/course/cards/1",
			body: map[string]any{"field": "answer", "value": "1h"}, status: http.StatusUnprocessableEntity, code: "invalid_value",
		},
		{
			name: "field outside contract", method: http.MethodPatch, path: "/api/v1/course/cards/0",
			body: map[string]any{"field": "content", "value": "x"}, status: http.StatusBadRequest, code: "unknown_field",
		},
		{
			name: "card out of range", method: http.MethodPatch, path: "/api/v1/course/cards/5",
			body: map[string]any{"field": "title", "value": "x"}, status: http.StatusNotFound, code: "index_out_of_range",
		},
		{
			name: "switch variant", method: http.MethodPut, path: "/api/v1/course/cards/0/variant",
			body: map[string]any{"variant": "comparison"}, status: http.StatusOK,
			validate: func(t *testing.T, c course.Course) {
				body, ok := c.Cards[0].Info.Body.(course.ComparisonBody)
				if !ok || body.Left == nil || body.Right == nil {
					t.Errorf("body = %#v", c.Cards[0].Info.Body)
				}
			},
		},
		{
			name: "switch quiz variant", method: http.MethodPut, path: "/api/v1/course/cards/1/variant",
			body: map[string]any{"variant": "hero"}, status: http.StatusUnprocessableEntity, code: "wrong_card_type",
		},
		{
			name: "unknown variant", method: http.MethodPut, path: "/api/v1/course/cards/0/variant",
			body: map[string]any{"variant": "carousel"}, status: http.StatusBadRequest, code: "unknown_variant",
		},
		{
			name: "nested on wrong variant", method: http.MethodPatch, path: "/api/v1/course/cards/0/nested/left",
			body: map[string]any{"field": "title", "value": "x"}, status: http.StatusUnprocessableEntity, code: "wrong_variant",
		},
		{
			name: "list item on wrong variant", method: http.MethodPost, path: "/api/v1/course/cards/0/items",
			status: http.StatusUnprocessableEntity, code: "wrong_variant",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, r := newTestApp(t, &fakeGenerator{})
			before := app.Session.Snapshot()
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" {
				if got := errorCode(t, w); got != tt.code {
					t.Errorf("code = %q, want %q", got, tt.code)
				}
				if !reflect.DeepEqual(app.Session.Snapshot(), before) {
					t.Errorf("failed request changed the session")
				}
				return
			}
			got := decodeCourse(t, w)
			if tt.validate != nil {
				tt.validate(t, got)
			}
			if !reflect.DeepEqual(app.Session.Snapshot(), got) {
				t.Errorf("response differs from the session document")
			}
		})
	}
}

func TestListItemEndpoints(t *testing.T) {
	app, r := newTestApp(t, &fakeGenerator{})
	app.Session.Replace(course.InsertCard(course.Empty(), course.NewCard(course.TypeInfo, course.VariantListWithIcons)))

	w := do(t, r, http.MethodPost, "/api/v1/course/cards/0/items", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add default item: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/v1/course/cards/0/items", map[string]any{"icon": "alert", "title": "Gloves", "color": "red"})
	if w.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", w.Code, w.Body.String())
	}
	items := decodeCourse(t, w).Cards[0].Info.Body.(course.ListBody).Items
	want := []course.ListItem{
		course.DefaultListItem(),
		{Icon: course.IconAlert, Title: "Gloves", Color: course.ColorRed},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}

	w = do(t, r, http.MethodPatch, "/api/v1/course/cards/0/items/0", map[string]any{"field": "icon", "value": "rocket"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad icon: %d", w.Code)
	}
	w = do(t, r, http.MethodPatch, "/api/v1/course/cards/0/items/0", map[string]any{"field": "icon", "value": "check"})
	if w.Code != http.StatusOK {
		t.Fatalf("set icon: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodDelete, "/api/v1/course/cards/0/items/0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete item: %d %s", w.Code, w.Body.String())
	}
	items = decodeCourse(t, w).Cards[0].Info.Body.(course.ListBody).Items
	if len(items) != 1 || items[0].Title != "Gloves" {
		t.Errorf("items = %+v", items)
	}
}

func TestReplaceCourseNormalizes(t *testing.T) {
	app, r := newTestApp(t, &fakeGenerator{})
	w := do(t, r, http.MethodPut, "/api/v1/course", `{"title":"T","cards":[{"type":"quiz","question":"Q","options":["A","B"],"answer":"C"}, 7]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	got := app.Session.Snapshot()
	if len(got.Cards) != 1 || got.Cards[0].Quiz.Answer != "A" {
		t.Errorf("session = %+v", got)
	}

	w = do(t, r, http.MethodPut, "/api/v1/course", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("syntax error status = %d", w.Code)
	}
}

func TestGenerateCourse(t *testing.T) {
	draft := map[string]any{
		"title": "Hand washing",
		"cards": []any{
			map[string]any{"type": "info", "variant": "big_number", "title": "Wash", "number": 20, "unit": "s", "desc": "at least"},
			map[string]any{"type": "quiz", "question": "How long?", "options": []any{"5s", "20s"}, "answer": "20s", "explanation": "Twenty."},
		},
	}
	tests := []struct {
		name   string
		gen    *fakeGenerator
		body   any
		status int
		code   string
	}{
		{name: "success", gen: &fakeGenerator{raw: draft}, body: map[string]any{"text": "wash"}, status: http.StatusOK},
		{name: "missing text", gen: &fakeGenerator{}, body: map[string]any{}, status: http.StatusBadRequest, code: "bad_request"},
		{name: "parse", gen: &fakeGenerator{err: &generate.Error{Kind: generate.KindParse}}, body: map[string]any{"text": "x"}, status: http.StatusBadGateway, code: "generation_parse"},
		{name: "timeout", gen: &fakeGenerator{err: &generate.Error{Kind: generate.KindTimeout}}, body: map[string]any{"text": "x"}, status: http.StatusGatewayTimeout, code: "generation_timeout"},
		{name: "upstream", gen: &fakeGenerator{err: &generate.Error{Kind: generate.KindUpstream}}, body: map[string]any{"text": "x"}, status: http.StatusBadGateway, code: "generation_upstream"},
		{name: "no key", gen: &fakeGenerator{err: &generate.Error{Kind: generate.KindConfig}}, body: map[string]any{"text": "x"}, status: http.StatusServiceUnavailable, code: "generation_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, r := newTestApp(t, tt.gen)
			before := app.Session.Snapshot()
			w := do(t, r, http.MethodPost, "/api/v1/course/generate", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" {
				if got := errorCode(t, w); got != tt.code {
					t.Errorf("code = %q, want %q", got, tt.code)
				}
				if !reflect.DeepEqual(app.Session.Snapshot(), before) {
					t.Errorf("failed generation changed the session")
				}
				return
			}
			got := app.Session.Snapshot()
			if got.Title != "Hand washing" || len(got.Cards) != 2 {
				t.Fatalf("session = %+v", got)
			}
			if body := got.Cards[0].Info.Body.(course.BigNumberBody); body.Number != "20" {
				t.Errorf("number = %q", body.Number)
			}
		})
	}
}

func TestGenerateRejectsConcurrentRuns(t *testing.T) {
	gen := &fakeGenerator{raw: map[string]any{}}
	app, r := newTestApp(t, gen)
	if err := app.Session.BeginGeneration(); err != nil {
		t.Fatal(err)
	}
	w := do(t, r, http.MethodPost, "/api/v1/course/generate", map[string]any{"text": "x"})
	if w.Code != http.StatusConflict || errorCode(t, w) != "generation_busy" {
		t.Errorf("status = %d %s", w.Code, w.Body.String())
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times", gen.calls)
	}
}

func TestSaveAndReload(t *testing.T) {
	app, r := newTestApp(t, &fakeGenerator{})
	saved := app.Session.Snapshot()

	if w := do(t, r, http.MethodPost, "/api/v1/course/save", nil); w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPatch, "/api/v1/course/title", map[string]any{"title": "Unsaved"}); w.Code != http.StatusOK {
		t.Fatalf("title: %d", w.Code)
	}
	w := do(t, r, http.MethodPost, "/api/v1/course/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reload: %d", w.Code)
	}
	if got := app.Session.Snapshot(); !reflect.DeepEqual(got, saved) {
		t.Errorf("reloaded %+v, want %+v", got, saved)
	}
}

func TestSaveFailureKeepsSession(t *testing.T) {
	app, r := newTestApp(t, &fakeGenerator{})
	app.Store = failingStore{Store: app.Store}
	before := app.Session.Snapshot()
	w := do(t, r, http.MethodPost, "/api/v1/course/save", nil)
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "save_failed" {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if !reflect.DeepEqual(app.Session.Snapshot(), before) {
		t.Errorf("session changed after a failed save")
	}
}

func TestPreviewAndStats(t *testing.T) {
	_, r := newTestApp(t, &fakeGenerator{})

	w := do(t, r, http.MethodGet, "/api/v1/course/preview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview: %d", w.Code)
	}
	var preview PreviewDTO
	if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
		t.Fatal(err)
	}
	if len(preview.Cards) != 2 || preview.Cards[0].Template != course.Template(course.VariantBigNumber) || preview.Cards[1].Template != course.TemplateQuiz {
		t.Errorf("preview = %+v", preview)
	}

	w = do(t, r, http.MethodGet, "/api/v1/course/stats", nil)
	var stats StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalCards != 2 || stats.ByType["quiz"] != 1 || stats.ByVariant["big_number"] != 1 || stats.QuizOptions != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestViewer(t *testing.T) {
	app, r := newTestApp(t, &fakeGenerator{})
	if err := app.Store.Save(context.Background(), testCourse()); err != nil {
		t.Fatal(err)
	}

	w := do(t, r, http.MethodGet, "/api/v1/viewer", nil)
	var view ViewerCourseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Title != "Kitchen hygiene" || view.Total != 2 || len(view.Cards) != 2 {
		t.Errorf("viewer = %+v", view)
	}

	w = do(t, r, http.MethodGet, "/api/v1/viewer/cards/1", nil)
	var card ViewerCardDTO
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatal(err)
	}
	if card.Index != 1 || card.Total != 2 || card.IsFirst || !card.IsLast || card.Card.Template != course.TemplateQuiz {
		t.Errorf("card = %+v", card)
	}
	if w := do(t, r, http.MethodGet, "/api/v1/viewer/cards/2", nil); w.Code != http.StatusNotFound {
		t.Errorf("past the end = %d", w.Code)
	}

	answers := []struct {
		index    string
		selected string
		status   int
		correct  bool
	}{
		{"1", "20s", http.StatusOK, true},
		{"1", "5s", http.StatusOK, false},
		{"0", "20s", http.StatusUnprocessableEntity, false},
		{"7", "20s", http.StatusNotFound, false},
	}
	for _, a := range answers {
		w := do(t, r, http.MethodPost, "/api/v1/viewer/cards/"+a.index+"/answer", map[string]any{"selected": a.selected})
		if w.Code != a.status {
			t.Errorf("answer %s/%s status = %d", a.index, a.selected, w.Code)
			continue
		}
		if w.Code != http.StatusOK {
			continue
		}
		var got AnswerDTO
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.IsCorrect != a.correct || got.Answer != "20s" {
			t.Errorf("answer %s = %+v", a.selected, got)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, r := newTestApp(t, &fakeGenerator{})
	w := do(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || w.Header().Get(requestIDHeader) == "" {
		t.Errorf("healthz = %d, request id %q", w.Code, w.Header().Get(requestIDHeader))
	}
}
