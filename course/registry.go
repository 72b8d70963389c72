// Package course holds the card document model: the variant registry, the
// normalizer that turns arbitrary JSON into a Course, the structural editor
// operations and the render dispatcher shared by the editor preview and the
// viewer.
package course

// CardType discriminates the top-level card union.
type CardType string

const (
	TypeInfo CardType = "info"
	TypeQuiz CardType = "quiz"
)

// Variant selects the template an info card is drawn with.
type Variant string

const (
	VariantClassic       Variant = "classic"
	VariantHero          Variant = "hero"
	VariantMagazine      Variant = "magazine"
	VariantListWithIcons Variant = "list_with_icons"
	VariantComparison    Variant = "comparison"
	VariantBigNumber     Variant = "big_number"
)

var variants = []Variant{
	VariantClassic,
	VariantHero,
	VariantMagazine,
	VariantListWithIcons,
	VariantComparison,
	VariantBigNumber,
}

// Variants returns the known info variants in presentation order.
func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

func ParseVariant(s string) (Variant, bool) {
	for _, v := range variants {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

func (v Variant) Valid() bool {
	_, ok := ParseVariant(string(v))
	return ok
}

func ParseCardType(s string) (CardType, bool) {
	switch CardType(s) {
	case TypeInfo, TypeQuiz:
		return CardType(s), true
	}
	return "", false
}

// Icon is the glyph drawn next to a list item.
type Icon string

const (
	IconCheck Icon = "check"
	IconX     Icon = "x"
	IconZap   Icon = "zap"
	IconAlert Icon = "alert"
	IconInfo  Icon = "info"
	IconStar  Icon = "star"
)

var icons = []Icon{IconCheck, IconX, IconZap, IconAlert, IconInfo, IconStar}

func Icons() []Icon { return append([]Icon(nil), icons...) }

func ParseIcon(s string) (Icon, bool) {
	for _, i := range icons {
		if string(i) == s {
			return i, true
		}
	}
	return "", false
}

// Color is the accent of a list item.
type Color string

const (
	ColorRed  Color = "red"
	ColorBlue Color = "blue"
)

func ParseColor(s string) (Color, bool) {
	switch Color(s) {
	case ColorRed, ColorBlue:
		return Color(s), true
	}
	return "", false
}

// FieldKind is the value shape of a contract field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindStringList
	KindItemList
	KindSide
)

type Field struct {
	Name string
	Kind FieldKind
}

var (
	quizFields = []Field{
		{"question", KindString},
		{"options", KindStringList},
		{"answer", KindString},
		{"explanation", KindString},
	}
	infoCommonFields = []Field{
		{"title", KindString},
		{"imageKeyword", KindString},
	}
	variantFields = map[Variant][]Field{
		VariantClassic:       {{"content", KindString}},
		VariantHero:          {{"content", KindString}},
		VariantMagazine:      {{"content", KindString}},
		VariantListWithIcons: {{"items", KindItemList}},
		VariantComparison:    {{"left", KindSide}, {"right", KindSide}},
		VariantBigNumber:     {{"number", KindString}, {"unit", KindString}, {"desc", KindString}},
	}
)

// Contract lists the data fields a card of the given type and variant
// carries. The discriminators (id, type, variant) are not included. The
// variant is ignored for quiz cards; an unknown variant yields the classic
// contract.
func Contract(t CardType, v Variant) []Field {
	if t == TypeQuiz {
		return append([]Field(nil), quizFields...)
	}
	vf, ok := variantFields[v]
	if !ok {
		vf = variantFields[VariantClassic]
	}
	out := make([]Field, 0, len(infoCommonFields)+len(vf))
	out = append(out, infoCommonFields...)
	return append(out, vf...)
}

// VariantFields lists only the fields owned by the variant, the ones
// SetCardVariant resets.
func VariantFields(v Variant) []Field {
	return append([]Field(nil), variantFields[v]...)
}

func lookupField(t CardType, v Variant, name string) (Field, bool) {
	for _, f := range Contract(t, v) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
