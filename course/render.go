package course

import "fmt"

// Template names the view a card is drawn with: one of the six info variants
// or quiz.
type Template string

const TemplateQuiz Template = "quiz"

// Instruction tells a view which template to draw and hands it exactly the
// fields that template reads.
type Instruction struct {
	CardID   string         `json:"cardId"`
	Template Template       `json:"template"`
	Fields   map[string]any `json:"fields"`
}

// imageTemplates draw a picture derived from the card's image keyword.
var imageTemplates = map[Template]bool{
	Template(VariantClassic):  true,
	Template(VariantHero):     true,
	Template(VariantMagazine): true,
}

// ImageURL is the picture shown for an image keyword.
func ImageURL(keyword string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/800/600", keywordOrDefault(keyword))
}

// TemplateFields lists the field names Render supplies for t.
func TemplateFields(t Template) []string {
	var fields []Field
	if t == TemplateQuiz {
		fields = Contract(TypeQuiz, "")
	} else {
		fields = Contract(TypeInfo, Variant(t))
	}
	out := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, f.Name)
	}
	if imageTemplates[t] {
		out = append(out, "imageUrl")
	}
	return out
}

// Render dispatches on the card's tag. The editor preview and the viewer both
// call it, so a card looks the same in either.
func Render(card Card) Instruction {
	fields := card.fieldValues()
	if card.Type == TypeQuiz {
		return Instruction{CardID: card.ID, Template: TemplateQuiz, Fields: fields}
	}
	t := Template(card.Info.variant())
	if imageTemplates[t] {
		fields["imageUrl"] = ImageURL(fields["imageKeyword"].(string))
	}
	return Instruction{CardID: card.ID, Template: t, Fields: fields}
}

func RenderCourse(c Course) []Instruction {
	out := make([]Instruction, 0, len(c.Cards))
	for _, card := range c.Cards {
		out = append(out, Render(card))
	}
	return out
}

// CardJSON rebuilds the stored shape of the card an instruction was rendered
// from. Derived fields are left out.
func (in Instruction) CardJSON() map[string]any {
	out := make(map[string]any, len(in.Fields)+3)
	for k, v := range in.Fields {
		if k == "imageUrl" {
			continue
		}
		out[k] = v
	}
	out["id"] = in.CardID
	if in.Template == TemplateQuiz {
		out["type"] = string(TypeQuiz)
	} else {
		out["type"] = string(TypeInfo)
		out["variant"] = string(in.Template)
	}
	return out
}
