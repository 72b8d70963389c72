package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"vmxio.com/sop-cards/course"
)

// variantHints tell the model when a layout fits. Picking one is entirely the
// model's call; normalization accepts any of them.
var variantHints = map[course.Variant]string{
	course.VariantClassic:       "plain narrative that fits none of the other layouts",
	course.VariantHero:          "a short, punchy statement shown over a large image",
	course.VariantMagazine:      "a reflective or stylish passage, shown dark and editorial",
	course.VariantListWithIcons: "the text holds 3-4 clear steps, rules or key points",
	course.VariantComparison:    "the text contrasts wrong vs right, before vs after, myth vs fact",
	course.VariantBigNumber:     "the core of the text is one key number (temperature, time, ratio)",
}

// SystemPrompt is the steering instruction sent with every request. The field
// shapes are generated from the course registry so the two cannot drift.
func SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a senior corporate trainer and visual interaction designer.\n")
	b.WriteString("Rewrite the standard operating procedure you are given as a short mobile course of cards.\n")
	b.WriteString("Answer with one JSON object: {\"title\": string, \"cards\": [card, ...]}.\n\n")

	b.WriteString("Info cards use \"type\": \"info\", a \"title\", an \"imageKeyword\" (an English search term for a photo) and one \"variant\":\n")
	for i, v := range course.Variants() {
		fmt.Fprintf(&b, "%d. variant \"%s\": use when %s.\n   Fields: %s\n", i+1, v, variantHints[v], example(course.TypeInfo, v))
	}
	fmt.Fprintf(&b, "   List item icons: %s. Colors: %s, %s.\n\n", joinIcons(), course.ColorRed, course.ColorBlue)

	b.WriteString("Quiz cards check understanding, use \"type\": \"quiz\", and \"answer\" must repeat one of the options verbatim.\n")
	fmt.Fprintf(&b, "   Fields: %s\n\n", example(course.TypeQuiz, ""))
	b.WriteString("Mix layouts to suit the content and end with at least one quiz card. Output JSON only.\n")
	return b.String()
}

// example renders a sample card of the given shape as JSON.
func example(t course.CardType, v course.Variant) string {
	fields := course.Render(course.NewCard(t, v)).CardJSON()
	delete(fields, "id")
	if v == course.VariantListWithIcons {
		fields["items"] = []course.ListItem{course.DefaultListItem()}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func joinIcons() string {
	icons := course.Icons()
	out := make([]string, len(icons))
	for i, icon := range icons {
		out[i] = string(icon)
	}
	return strings.Join(out, ", ")
}
