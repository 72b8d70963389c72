package course

// defaultKey addresses one entry of the defaults table. An empty variant
// applies to every variant of the type; nested fields use a dotted name.
type defaultKey struct {
	typ     CardType
	variant Variant
	field   string
}

// Every default the normalizer and the editor fall back to lives here. Fields
// missing from the table default to the empty string.
var defaults = map[defaultKey]string{
	{"", "", "title"}:                               "untitled",
	{TypeInfo, "", "variant"}:                       string(VariantClassic),
	{TypeInfo, "", "imageKeyword"}:                  "default",
	{TypeInfo, VariantListWithIcons, "items.icon"}:  string(IconStar),
	{TypeInfo, VariantListWithIcons, "items.color"}: string(ColorBlue),
	{TypeQuiz, "", "options.placeholder"}:           "option",
}

// Default returns the default value of a field, preferring a
// variant-specific entry over a type-wide one.
func Default(t CardType, v Variant, field string) string {
	if s, ok := defaults[defaultKey{t, v, field}]; ok {
		return s
	}
	if s, ok := defaults[defaultKey{t, "", field}]; ok {
		return s
	}
	return ""
}

// DefaultCourseTitle is the title of a course nobody named.
func DefaultCourseTitle() string { return Default("", "", "title") }

func DefaultVariant() Variant { return Variant(Default(TypeInfo, "", "variant")) }

func DefaultImageKeyword() string { return Default(TypeInfo, "", "imageKeyword") }

// DefaultListItem is the item appended when the editor adds a row.
func DefaultListItem() ListItem {
	return ListItem{
		Icon:  Icon(Default(TypeInfo, VariantListWithIcons, "items.icon")),
		Title: Default(TypeInfo, VariantListWithIcons, "items.title"),
		Desc:  Default(TypeInfo, VariantListWithIcons, "items.desc"),
		Color: Color(Default(TypeInfo, VariantListWithIcons, "items.color")),
	}
}

func DefaultSide(parent string) Side {
	return Side{
		Title: Default(TypeInfo, VariantComparison, parent+".title"),
		Desc:  Default(TypeInfo, VariantComparison, parent+".desc"),
	}
}

// newBody builds the empty body of a variant.
func newBody(v Variant) Body {
	switch v {
	case VariantListWithIcons:
		return ListBody{Items: []ListItem{}}
	case VariantComparison:
		left, right := DefaultSide("left"), DefaultSide("right")
		return ComparisonBody{Left: &left, Right: &right}
	case VariantBigNumber:
		return BigNumberBody{
			Number: Default(TypeInfo, v, "number"),
			Unit:   Default(TypeInfo, v, "unit"),
			Desc:   Default(TypeInfo, v, "desc"),
		}
	default:
		return TextBody{Content: Default(TypeInfo, v, "content")}
	}
}

// placeholderOption is the single option synthesized for a quiz that came in
// without usable options. A non-empty answer is kept as that option.
func placeholderOption(answer string) string {
	if answer != "" {
		return answer
	}
	return Default(TypeQuiz, "", "options.placeholder")
}
