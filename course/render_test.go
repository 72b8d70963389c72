package course

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"
)

func fieldNames(fields map[string]any) []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestRenderSuppliesExactlyTemplateFields(t *testing.T) {
	sequentialIDs(t)
	cards := []Card{NewCard(TypeQuiz, "")}
	for _, v := range Variants() {
		cards = append(cards, NewCard(TypeInfo, v))
	}
	for _, card := range cards {
		r := Render(card)
		t.Run(string(r.Template), func(t *testing.T) {
			want := TemplateFields(r.Template)
			sort.Strings(want)
			if got := fieldNames(r.Fields); !reflect.DeepEqual(got, want) {
				t.Errorf("fields = %v, want %v", got, want)
			}
			if r.CardID != card.ID {
				t.Errorf("card id = %q, want %q", r.CardID, card.ID)
			}
		})
	}
}

func TestRenderTemplates(t *testing.T) {
	c := fixture(t)
	got := RenderCourse(c)
	want := []Template{
		Template(VariantListWithIcons),
		Template(VariantComparison),
		TemplateQuiz,
		Template(VariantClassic),
	}
	if len(got) != len(want) {
		t.Fatalf("rendered %d cards", len(got))
	}
	for i, r := range got {
		if r.Template != want[i] {
			t.Errorf("card %d template = %s, want %s", i, r.Template, want[i])
		}
	}
	if url := got[3].Fields["imageUrl"]; url != "https://picsum.photos/seed/soap/800/600" {
		t.Errorf("imageUrl = %v", url)
	}
	if left := got[1].Fields["left"].(Side); left.Title != "Red cloth" {
		t.Errorf("left = %+v", left)
	}
}

func TestRenderDoesNotAliasCourse(t *testing.T) {
	c := fixture(t)
	r := Render(c.Cards[2])
	r.Fields["options"].([]string)[0] = "changed"
	if c.Cards[2].Quiz.Options[0] != "5s" {
		t.Errorf("render output aliases the quiz options")
	}
}

func TestRenderAfterEveryVariantSwitch(t *testing.T) {
	c := fixture(t)
	for _, v := range Variants() {
		out, err := SetCardVariant(c, 1, v)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		r := Render(out.Cards[1])
		allowed := map[string]bool{}
		for _, name := range TemplateFields(Template(v)) {
			allowed[name] = true
		}
		for name := range r.Fields {
			if !allowed[name] {
				t.Errorf("%s: render carries %q outside the contract", v, name)
			}
		}
	}
}

func TestRenderRoundTrip(t *testing.T) {
	sequentialIDs(t)
	for i, g := range garbage {
		x := decode(t, g)
		norm := Normalize(x)

		// Rendered instructions rebuilt into cards.
		cards := make([]any, 0, len(norm.Cards))
		for _, r := range RenderCourse(norm) {
			cards = append(cards, r.CardJSON())
		}
		fromRender := Normalize(map[string]any{"title": norm.Title, "cards": cards})
		if !reflect.DeepEqual(fromRender, norm) {
			t.Errorf("input %d: render round trip changed the course:\n got=%+v\nwant=%+v", i, fromRender, norm)
		}

		// Stored JSON loaded back.
		data, err := json.Marshal(norm)
		if err != nil {
			t.Fatalf("input %d: marshal: %v", i, err)
		}
		loaded, _, err := NormalizeJSON(data)
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		if !reflect.DeepEqual(loaded, norm) {
			t.Errorf("input %d: save/load round trip changed the course", i)
		}
	}
}
