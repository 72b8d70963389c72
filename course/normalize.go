package course

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Repair records one silent downgrade performed while normalizing. Card is
// -1 for course-level repairs.
type Repair struct {
	Card   int    `json:"card"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (r Repair) String() string {
	if r.Card < 0 {
		return fmt.Sprintf("%s: %s", r.Field, r.Reason)
	}
	return fmt.Sprintf("cards[%d].%s: %s", r.Card, r.Field, r.Reason)
}

type repairLog struct {
	card    int
	repairs []Repair
}

func (l *repairLog) add(field, reason string) {
	l.repairs = append(l.repairs, Repair{Card: l.card, Field: field, Reason: reason})
}

// Normalize coerces any value into a well-formed Course. It never fails.
func Normalize(raw any) Course {
	c, _ := NormalizeReport(raw)
	return c
}

// NormalizeJSON parses data and normalizes the result. Only a syntax error is
// returned; every shape problem is repaired.
func NormalizeJSON(data []byte) (Course, []Repair, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Empty(), nil, err
	}
	c, repairs := NormalizeReport(raw)
	return c, repairs, nil
}

// NormalizeReport is Normalize plus the list of repairs it had to make.
func NormalizeReport(raw any) (Course, []Repair) {
	raw = toGeneric(raw)
	log := &repairLog{card: -1}
	out := Empty()

	root, ok := raw.(map[string]any)
	if !ok {
		if raw != nil {
			log.add("$", "document is not an object")
		}
		return out, log.repairs
	}

	switch t := root["title"].(type) {
	case string:
		out.Title = t
	case nil:
	default:
		log.add("title", "not a string")
	}

	switch cards := root["cards"].(type) {
	case []any:
		out.Cards = make([]Card, 0, len(cards))
		for i, rc := range cards {
			log.card = i
			if card, ok := normalizeCard(rc, log); ok {
				out.Cards = append(out.Cards, card)
			}
		}
		log.card = -1
	case nil:
	default:
		log.add("cards", "not a list")
	}
	return out, log.repairs
}

// toGeneric turns typed Go values (a Course, a Card, structs) into the
// generic shape encoding/json produces, so normalization can walk them.
func toGeneric(raw any) any {
	switch v := raw.(type) {
	case nil, string, float64, bool:
		return raw
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = toGeneric(x)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = toGeneric(x)
		}
		return out
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func normalizeCard(raw any, log *repairLog) (Card, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		m, ok = toGeneric(raw).(map[string]any)
	}
	if !ok {
		log.add("$", "card is not an object, dropped")
		return Card{}, false
	}

	id, _ := m["id"].(string)
	if id == "" {
		id = newCardID()
	}

	typeName, _ := m["type"].(string)
	typ, ok := ParseCardType(typeName)
	if !ok {
		log.add("type", fmt.Sprintf("unknown type %q, coerced to info/classic", typeName))
		return salvageInfo(id, m, log), true
	}
	if typ == TypeQuiz {
		return normalizeQuiz(id, m, log), true
	}
	return normalizeInfo(id, m, log), true
}

// salvageInfo keeps the string fields of an unrecognized card as a classic
// info card.
func salvageInfo(id string, m map[string]any, log *repairLog) Card {
	card := NewCard(TypeInfo, VariantClassic)
	card.ID = id
	card.Info.Title = stringField(m, "title", "", log)
	card.Info.ImageKeyword = keywordOrDefault(stringField(m, "imageKeyword", DefaultImageKeyword(), log))
	card.Info.Body = TextBody{Content: stringField(m, "content", "", log)}
	return card
}

func normalizeQuiz(id string, m map[string]any, log *repairLog) Card {
	dropStray(m, TypeQuiz, "", log)
	q := &Quiz{
		Question:    stringField(m, "question", Default(TypeQuiz, "", "question"), log),
		Answer:      stringField(m, "answer", Default(TypeQuiz, "", "answer"), log),
		Explanation: stringField(m, "explanation", Default(TypeQuiz, "", "explanation"), log),
	}

	var opts []string
	switch raw := m["options"].(type) {
	case []any:
		opts = make([]string, 0, len(raw))
		for _, o := range raw {
			if s, ok := o.(string); ok {
				opts = append(opts, s)
			}
		}
		if len(opts) != len(raw) {
			log.add("options", "non-string options dropped")
		}
	case nil:
	default:
		log.add("options", "not a list")
	}
	q.Options, q.Answer = repairQuizOptions(opts, q.Answer, log)

	return Card{ID: id, Type: TypeQuiz, Quiz: q}
}

// repairQuizOptions enforces the quiz invariants: at least one option, and an
// answer that is one of the options. A dangling answer is reset to the first
// option.
func repairQuizOptions(opts []string, answer string, log *repairLog) ([]string, string) {
	switch len(opts) {
	case 0:
		opts = []string{placeholderOption(answer)}
		log.add("options", "missing, placeholder synthesized")
	case 1:
		log.add("options", "fewer than two options")
	}
	for _, o := range opts {
		if o == answer {
			return opts, answer
		}
	}
	log.add("answer", fmt.Sprintf("%q is not an option, reset to %q", answer, opts[0]))
	return opts, opts[0]
}

func normalizeInfo(id string, m map[string]any, log *repairLog) Card {
	variant := DefaultVariant()
	switch raw := m["variant"].(type) {
	case string:
		if v, ok := ParseVariant(raw); ok {
			variant = v
		} else {
			log.add("variant", fmt.Sprintf("unknown variant %q, fell back to %s", raw, variant))
		}
	case nil:
	default:
		log.add("variant", "not a string")
	}
	dropStray(m, TypeInfo, variant, log)

	in := &Info{
		Title:        stringField(m, "title", Default(TypeInfo, variant, "title"), log),
		ImageKeyword: keywordOrDefault(stringField(m, "imageKeyword", DefaultImageKeyword(), log)),
		Variant:      variant,
	}

	switch variant {
	case VariantListWithIcons:
		in.Body = ListBody{Items: normalizeItems(m["items"], log)}
	case VariantComparison:
		left := normalizeSide(m["left"], "left", log)
		right := normalizeSide(m["right"], "right", log)
		in.Body = ComparisonBody{Left: &left, Right: &right}
	case VariantBigNumber:
		in.Body = BigNumberBody{
			Number: numberField(m, "number", log),
			Unit:   stringField(m, "unit", Default(TypeInfo, variant, "unit"), log),
			Desc:   stringField(m, "desc", Default(TypeInfo, variant, "desc"), log),
		}
	default:
		in.Body = TextBody{Content: stringField(m, "content", Default(TypeInfo, variant, "content"), log)}
	}
	return Card{ID: id, Type: TypeInfo, Info: in}
}

func normalizeItems(raw any, log *repairLog) []ListItem {
	items := []ListItem{}
	switch list := raw.(type) {
	case []any:
		for i, r := range list {
			m, ok := r.(map[string]any)
			if !ok {
				log.add(fmt.Sprintf("items[%d]", i), "not an object, dropped")
				continue
			}
			items = append(items, normalizeListItem(m, fmt.Sprintf("items[%d]", i), log))
		}
	case nil:
	default:
		log.add("items", "not a list")
	}
	return items
}

func normalizeListItem(m map[string]any, path string, log *repairLog) ListItem {
	item := DefaultListItem()
	sub := &repairLog{card: log.card}
	item.Title = stringField(m, "title", item.Title, sub)
	item.Desc = stringField(m, "desc", item.Desc, sub)
	if s, ok := m["icon"].(string); ok {
		if icon, ok := ParseIcon(s); ok {
			item.Icon = icon
		} else {
			sub.add("icon", fmt.Sprintf("unknown icon %q, fell back to %s", s, item.Icon))
		}
	}
	if s, ok := m["color"].(string); ok {
		if color, ok := ParseColor(s); ok {
			item.Color = color
		} else {
			sub.add("color", fmt.Sprintf("unknown color %q, fell back to %s", s, item.Color))
		}
	}
	for _, r := range sub.repairs {
		log.add(path+"."+r.Field, r.Reason)
	}
	return item
}

func normalizeSide(raw any, parent string, log *repairLog) Side {
	side := DefaultSide(parent)
	switch m := raw.(type) {
	case map[string]any:
		sub := &repairLog{card: log.card}
		side.Title = stringField(m, "title", side.Title, sub)
		side.Desc = stringField(m, "desc", side.Desc, sub)
		for _, r := range sub.repairs {
			log.add(parent+"."+r.Field, r.Reason)
		}
	case nil:
	default:
		log.add(parent, "not an object")
	}
	return side
}

// stringField reads a string field, using def when it is absent or not a
// string.
func stringField(m map[string]any, name, def string, log *repairLog) string {
	switch v := m[name].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		log.add(name, "not a string")
		return def
	}
}

// numberField reads the big_number display text. Generators often emit a
// bare number, which is kept in its shortest decimal form.
func numberField(m map[string]any, name string, log *repairLog) string {
	def := Default(TypeInfo, VariantBigNumber, name)
	switch v := m[name].(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return def
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return stringField(m, name, def, log)
	}
}

func keywordOrDefault(s string) string {
	if s == "" {
		return DefaultImageKeyword()
	}
	return s
}

// dropStray logs every field that does not belong to the resolved contract.
// The stray values are never copied into the card.
func dropStray(m map[string]any, t CardType, v Variant, log *repairLog) {
	allowed := map[string]bool{"id": true, "type": true}
	if t == TypeInfo {
		allowed["variant"] = true
	}
	for _, f := range Contract(t, v) {
		allowed[f.Name] = true
	}
	var stray []string
	for k := range m {
		if !allowed[k] {
			stray = append(stray, k)
		}
	}
	sort.Strings(stray)
	for _, k := range stray {
		log.add(k, "not part of the contract, dropped")
	}
}
