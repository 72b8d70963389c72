package course

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Course is the whole document: a title and the cards in presentation order.
type Course struct {
	Title string
	Cards []Card
}

// Empty is the placeholder course used when no prior document exists.
func Empty() Course {
	return Course{Title: DefaultCourseTitle(), Cards: []Card{}}
}

// Card is a tagged union: exactly one of Quiz and Info is set, matching Type.
// Values are built by Normalize or NewCard; other code must check Type before
// touching either side.
type Card struct {
	ID   string
	Type CardType
	Quiz *Quiz
	Info *Info
}

type Quiz struct {
	Question    string
	Options     []string
	Answer      string
	Explanation string
}

type Info struct {
	Title        string
	ImageKeyword string
	Variant      Variant
	Body         Body
}

// Body is the variant-specific part of an info card.
type Body interface {
	isBody()
}

// TextBody backs the classic, hero and magazine variants.
type TextBody struct {
	Content string
}

type ListBody struct {
	Items []ListItem
}

type ComparisonBody struct {
	Left  *Side
	Right *Side
}

type BigNumberBody struct {
	Number string
	Unit   string
	Desc   string
}

func (TextBody) isBody()       {}
func (ListBody) isBody()       {}
func (ComparisonBody) isBody() {}
func (BigNumberBody) isBody()  {}

type ListItem struct {
	Icon  Icon   `json:"icon"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Color Color  `json:"color"`
}

type Side struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// newCardID assigns the synthetic id that keeps a card addressable across
// reorders.
var newCardID = func() string { return uuid.NewString() }

// NewCard returns a card of the given type filled with defaults. The variant
// is ignored for quiz cards; an unknown variant falls back to the default.
func NewCard(t CardType, v Variant) Card {
	if t == TypeQuiz {
		opt := placeholderOption("")
		return Card{
			ID:   newCardID(),
			Type: TypeQuiz,
			Quiz: &Quiz{
				Question:    Default(TypeQuiz, "", "question"),
				Options:     []string{opt},
				Answer:      opt,
				Explanation: Default(TypeQuiz, "", "explanation"),
			},
		}
	}
	if !v.Valid() {
		v = DefaultVariant()
	}
	return Card{
		ID:   newCardID(),
		Type: TypeInfo,
		Info: &Info{
			Title:        Default(TypeInfo, v, "title"),
			ImageKeyword: DefaultImageKeyword(),
			Variant:      v,
			Body:         newBody(v),
		},
	}
}

// Clone returns a deep copy sharing no slices or pointers with c.
func (c Course) Clone() Course {
	out := Course{Title: c.Title, Cards: make([]Card, len(c.Cards))}
	for i, card := range c.Cards {
		out.Cards[i] = card.Clone()
	}
	return out
}

func (c Card) Clone() Card {
	out := Card{ID: c.ID, Type: c.Type}
	if c.Quiz != nil {
		q := *c.Quiz
		q.Options = append([]string{}, c.Quiz.Options...)
		out.Quiz = &q
	}
	if c.Info != nil {
		in := *c.Info
		in.Body = cloneBody(c.Info.Body)
		out.Info = &in
	}
	return out
}

func cloneBody(b Body) Body {
	switch body := b.(type) {
	case ListBody:
		return ListBody{Items: append([]ListItem{}, body.Items...)}
	case ComparisonBody:
		out := ComparisonBody{}
		if body.Left != nil {
			l := *body.Left
			out.Left = &l
		}
		if body.Right != nil {
			r := *body.Right
			out.Right = &r
		}
		return out
	}
	return b
}

// variant resolves the template of an info card, tolerating hand-built values.
func (in *Info) variant() Variant {
	if in == nil || !in.Variant.Valid() {
		return DefaultVariant()
	}
	return in.Variant
}

// body returns the card body, or the variant's empty body when the stored one
// does not belong to the variant.
func (in *Info) body() Body {
	v := in.variant()
	if in == nil || in.Body == nil || bodyVariantMismatch(v, in.Body) {
		return newBody(v)
	}
	return in.Body
}

func bodyVariantMismatch(v Variant, b Body) bool {
	switch b.(type) {
	case TextBody:
		return v != VariantClassic && v != VariantHero && v != VariantMagazine
	case ListBody:
		return v != VariantListWithIcons
	case ComparisonBody:
		return v != VariantComparison
	case BigNumberBody:
		return v != VariantBigNumber
	}
	return true
}

// fieldValues returns exactly the contract fields of c with their values.
// Slices are copied so callers may keep the map.
func (c Card) fieldValues() map[string]any {
	if c.Type == TypeQuiz {
		q := c.Quiz
		if q == nil {
			q = NewCard(TypeQuiz, "").Quiz
		}
		opts := append([]string{}, q.Options...)
		return map[string]any{
			"question":    q.Question,
			"options":     opts,
			"answer":      q.Answer,
			"explanation": q.Explanation,
		}
	}
	in := c.Info
	out := map[string]any{
		"title":        "",
		"imageKeyword": DefaultImageKeyword(),
	}
	if in != nil {
		out["title"] = in.Title
		if in.ImageKeyword != "" {
			out["imageKeyword"] = in.ImageKeyword
		}
	}
	switch body := in.body().(type) {
	case TextBody:
		out["content"] = body.Content
	case ListBody:
		out["items"] = append([]ListItem{}, body.Items...)
	case ComparisonBody:
		left, right := DefaultSide("left"), DefaultSide("right")
		if body.Left != nil {
			left = *body.Left
		}
		if body.Right != nil {
			right = *body.Right
		}
		out["left"] = left
		out["right"] = right
	case BigNumberBody:
		out["number"] = body.Number
		out["unit"] = body.Unit
		out["desc"] = body.Desc
	}
	return out
}

// MarshalJSON writes the flat wire shape: discriminators plus exactly the
// fields of the card's contract.
func (c Card) MarshalJSON() ([]byte, error) {
	m := c.fieldValues()
	m["id"] = c.ID
	if c.Type == TypeQuiz {
		m["type"] = string(TypeQuiz)
	} else {
		m["type"] = string(TypeInfo)
		m["variant"] = string(c.Info.variant())
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts any JSON value and normalizes it into a card.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	card, ok := normalizeCard(raw, &repairLog{card: -1})
	if !ok {
		card = NewCard(TypeInfo, DefaultVariant())
	}
	*c = card
	return nil
}

func (c Course) MarshalJSON() ([]byte, error) {
	cards := c.Cards
	if cards == nil {
		cards = []Card{}
	}
	return json.Marshal(struct {
		Title string `json:"title"`
		Cards []Card `json:"cards"`
	}{c.Title, cards})
}

// UnmarshalJSON accepts any syntactically valid JSON and normalizes it.
func (c *Course) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Normalize(raw)
	return nil
}
