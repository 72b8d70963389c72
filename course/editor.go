package course

import "fmt"

// The editor operations below never modify their input. Each returns a new
// Course that normalizes to itself, or the unchanged input and an error.

// SetTitle renames the course.
func SetTitle(c Course, title string) Course {
	out := c.Clone()
	out.Title = title
	return out
}

// InsertCard appends card. The card is normalized first so hand-built values
// cannot break the document.
func InsertCard(c Course, card Card) Course {
	n, ok := normalizeCard(card, &repairLog{card: -1})
	if !ok {
		n = NewCard(TypeInfo, DefaultVariant())
	}
	out := c.Clone()
	out.Cards = append(out.Cards, n)
	return out
}

// RemoveCard deletes cards[index]. A stale index is a no-op.
func RemoveCard(c Course, index int) Course {
	out := c.Clone()
	if index < 0 || index >= len(out.Cards) {
		return out
	}
	out.Cards = append(out.Cards[:index], out.Cards[index+1:]...)
	return out
}

// MoveCard moves cards[from] so that it ends up at position to.
func MoveCard(c Course, from, to int) (Course, error) {
	if from < 0 || from >= len(c.Cards) {
		return c, fmt.Errorf("move card %d: %w", from, ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(c.Cards) {
		return c, fmt.Errorf("move card to %d: %w", to, ErrIndexOutOfRange)
	}
	out := c.Clone()
	card := out.Cards[from]
	out.Cards = append(out.Cards[:from], out.Cards[from+1:]...)
	out.Cards = append(out.Cards[:to], append([]Card{card}, out.Cards[to:]...)...)
	return out, nil
}

// SetCardField replaces one top-level field of cards[index]. Setting
// "variant" is the same as SetCardVariant; id and type cannot be set.
func SetCardField(c Course, index int, field string, value any) (Course, error) {
	card, err := cardAt(c, index)
	if err != nil {
		return c, err
	}
	if field == "variant" {
		s, ok := value.(string)
		if !ok {
			return c, fmt.Errorf("card %d variant: %w", index, ErrInvalidValue)
		}
		return SetCardVariant(c, index, Variant(s))
	}

	var variant Variant
	if card.Type == TypeInfo {
		variant = card.Info.variant()
	}
	f, ok := lookupField(card.Type, variant, field)
	if !ok {
		return c, fmt.Errorf("card %d field %q: %w", index, field, ErrUnknownField)
	}

	out := c.Clone()
	target := editable(&out, index)
	if target.Type == TypeQuiz {
		err = setQuizField(target.Quiz, f, value)
	} else {
		err = setInfoField(target.Info, f, value)
	}
	if err != nil {
		return c, fmt.Errorf("card %d field %q: %w", index, field, err)
	}
	return out, nil
}

func setQuizField(q *Quiz, f Field, value any) error {
	if f.Kind == KindStringList {
		opts, ok := asStrings(value)
		if !ok {
			return ErrInvalidValue
		}
		q.Options, q.Answer = repairQuizOptions(opts, q.Answer, &repairLog{})
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return ErrInvalidValue
	}
	switch f.Name {
	case "question":
		q.Question = s
	case "explanation":
		q.Explanation = s
	case "answer":
		for _, o := range q.Options {
			if o == s {
				q.Answer = s
				return nil
			}
		}
		return ErrInvalidValue
	}
	return nil
}

func setInfoField(in *Info, f Field, value any) error {
	log := &repairLog{}
	switch f.Kind {
	case KindItemList:
		list, ok := toGeneric(value).([]any)
		if !ok {
			return ErrInvalidValue
		}
		in.Body = ListBody{Items: normalizeItems(list, log)}
		return nil
	case KindSide:
		m, ok := toGeneric(value).(map[string]any)
		if !ok {
			return ErrInvalidValue
		}
		side := normalizeSide(m, f.Name, log)
		body, _ := in.body().(ComparisonBody)
		if f.Name == "left" {
			body.Left = &side
		} else {
			body.Right = &side
		}
		in.Body = body
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return ErrInvalidValue
	}
	switch f.Name {
	case "title":
		in.Title = s
	case "imageKeyword":
		in.ImageKeyword = keywordOrDefault(s)
	case "content":
		in.Body = TextBody{Content: s}
	case "number", "unit", "desc":
		body, _ := in.body().(BigNumberBody)
		switch f.Name {
		case "number":
			body.Number = s
		case "unit":
			body.Unit = s
		default:
			body.Desc = s
		}
		in.Body = body
	}
	return nil
}

// SetNestedField sets left.title, right.desc and friends on a comparison
// card. A missing side is created first (see editable).
func SetNestedField(c Course, index int, parent, field string, value any) (Course, error) {
	card, err := cardAt(c, index)
	if err != nil {
		return c, err
	}
	if card.Type != TypeInfo {
		return c, fmt.Errorf("card %d: %w", index, ErrWrongCardType)
	}
	if card.Info.variant() != VariantComparison {
		return c, fmt.Errorf("card %d is %s: %w", index, card.Info.variant(), ErrWrongVariant)
	}
	if parent != "left" && parent != "right" {
		return c, fmt.Errorf("card %d field %q: %w", index, parent, ErrUnknownField)
	}
	if field != "title" && field != "desc" {
		return c, fmt.Errorf("card %d field %s.%s: %w", index, parent, field, ErrUnknownField)
	}
	s, ok := value.(string)
	if !ok {
		return c, fmt.Errorf("card %d field %s.%s: %w", index, parent, field, ErrInvalidValue)
	}

	out := c.Clone()
	in := editable(&out, index).Info
	body, _ := in.Body.(ComparisonBody)
	side := body.Left
	if parent == "right" {
		side = body.Right
	}
	if field == "title" {
		side.Title = s
	} else {
		side.Desc = s
	}
	return out, nil
}

// SetListItemField sets one field of items[itemIndex]. Items are never
// created here; use InsertListItem.
func SetListItemField(c Course, index, itemIndex int, field string, value any) (Course, error) {
	body, err := listBodyAt(c, index)
	if err != nil {
		return c, err
	}
	if itemIndex < 0 || itemIndex >= len(body.Items) {
		return c, fmt.Errorf("card %d item %d: %w", index, itemIndex, ErrIndexOutOfRange)
	}
	s, ok := value.(string)
	if !ok {
		return c, fmt.Errorf("card %d item %d %s: %w", index, itemIndex, field, ErrInvalidValue)
	}

	out := c.Clone()
	items := editable(&out, index).Info.Body.(ListBody).Items
	item := &items[itemIndex]
	switch field {
	case "title":
		item.Title = s
	case "desc":
		item.Desc = s
	case "icon":
		icon, ok := ParseIcon(s)
		if !ok {
			return c, fmt.Errorf("card %d item %d icon %q: %w", index, itemIndex, s, ErrInvalidValue)
		}
		item.Icon = icon
	case "color":
		color, ok := ParseColor(s)
		if !ok {
			return c, fmt.Errorf("card %d item %d color %q: %w", index, itemIndex, s, ErrInvalidValue)
		}
		item.Color = color
	default:
		return c, fmt.Errorf("card %d item field %q: %w", index, field, ErrUnknownField)
	}
	return out, nil
}

// InsertListItem appends item to the card's items. Unknown icons and colors
// fall back to the defaults.
func InsertListItem(c Course, index int, item ListItem) (Course, error) {
	if _, err := listBodyAt(c, index); err != nil {
		return c, err
	}
	if _, ok := ParseIcon(string(item.Icon)); !ok {
		item.Icon = DefaultListItem().Icon
	}
	if _, ok := ParseColor(string(item.Color)); !ok {
		item.Color = DefaultListItem().Color
	}
	out := c.Clone()
	in := editable(&out, index).Info
	body := in.Body.(ListBody)
	body.Items = append(body.Items, item)
	in.Body = body
	return out, nil
}

// RemoveListItem deletes items[itemIndex]. A stale item index is a no-op, a
// bad card index is not.
func RemoveListItem(c Course, index, itemIndex int) (Course, error) {
	body, err := listBodyAt(c, index)
	if err != nil {
		return c, err
	}
	out := c.Clone()
	if itemIndex < 0 || itemIndex >= len(body.Items) {
		return out, nil
	}
	in := editable(&out, index).Info
	items := in.Body.(ListBody).Items
	in.Body = ListBody{Items: append(items[:itemIndex], items[itemIndex+1:]...)}
	return out, nil
}

// SetCardVariant switches an info card to v and resets every variant field
// to v's defaults. Nothing is migrated between variants. Title and image
// keyword are kept. Selecting the current variant changes nothing.
func SetCardVariant(c Course, index int, v Variant) (Course, error) {
	card, err := cardAt(c, index)
	if err != nil {
		return c, err
	}
	if card.Type != TypeInfo {
		return c, fmt.Errorf("card %d: %w", index, ErrWrongCardType)
	}
	if !v.Valid() {
		return c, fmt.Errorf("card %d variant %q: %w", index, v, ErrUnknownVariant)
	}
	out := c.Clone()
	in := editable(&out, index).Info
	if in.Variant == v {
		return out, nil
	}
	in.Variant = v
	in.Body = newBody(v)
	return out, nil
}

// cardAt returns a normalized view of cards[index]: info cards always carry
// an Info with a body matching the variant.
func cardAt(c Course, index int) (Card, error) {
	if index < 0 || index >= len(c.Cards) {
		return Card{}, fmt.Errorf("card %d: %w", index, ErrIndexOutOfRange)
	}
	card := c.Cards[index]
	if card.Type == TypeQuiz && card.Quiz == nil {
		card.Quiz = NewCard(TypeQuiz, "").Quiz
	}
	if card.Type != TypeQuiz {
		card.Type = TypeInfo
	}
	return card, nil
}

// editable repairs a hand-built card in place so that the typed fields an
// operation touches are present. out must be a clone owned by the caller.
func editable(out *Course, index int) *Card {
	card := &out.Cards[index]
	if card.Type == TypeQuiz {
		if card.Quiz == nil {
			card.Quiz = NewCard(TypeQuiz, "").Quiz
		}
		card.Quiz.Options, card.Quiz.Answer = repairQuizOptions(card.Quiz.Options, card.Quiz.Answer, &repairLog{})
		return card
	}
	card.Type = TypeInfo
	if card.Info == nil {
		card.Info = NewCard(TypeInfo, DefaultVariant()).Info
	}
	in := card.Info
	in.ImageKeyword = keywordOrDefault(in.ImageKeyword)
	in.Body = in.body()
	in.Variant = in.variant()
	switch body := in.Body.(type) {
	case ListBody:
		if body.Items == nil {
			in.Body = ListBody{Items: []ListItem{}}
		}
	case ComparisonBody:
		if body.Left == nil {
			d := DefaultSide("left")
			body.Left = &d
		}
		if body.Right == nil {
			d := DefaultSide("right")
			body.Right = &d
		}
		in.Body = body
	}
	return card
}

func listBodyAt(c Course, index int) (ListBody, error) {
	card, err := cardAt(c, index)
	if err != nil {
		return ListBody{}, err
	}
	if card.Type != TypeInfo {
		return ListBody{}, fmt.Errorf("card %d: %w", index, ErrWrongCardType)
	}
	if v := card.Info.variant(); v != VariantListWithIcons {
		return ListBody{}, fmt.Errorf("card %d is %s: %w", index, v, ErrWrongVariant)
	}
	return card.Info.body().(ListBody), nil
}

// asStrings accepts []string or a decoded JSON array of strings.
func asStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
