package survey

// DefaultTheme is used when a survey has no, or an unknown, theme type.
const DefaultTheme = "default"

// ThemeTypes are the SurveyJS theme families, in display order.
var ThemeTypes = []string{"default", "borderless", "flat", "layered", "plain", "sharp", "solid", "contrast"}

// ThemeModes every family ships in.
var ThemeModes = []string{"light", "dark"}

type Theme struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// Themes lists every type/mode pair as "{type}-{mode}".
func Themes() []Theme {
	out := make([]Theme, 0, len(ThemeTypes)*len(ThemeModes))
	for _, t := range ThemeTypes {
		for _, m := range ThemeModes {
			out = append(out, Theme{ID: t + "-" + m, Type: t, Mode: m})
		}
	}
	return out
}

// NormalizeTheme maps unknown theme types to DefaultTheme.
func NormalizeTheme(t string) string {
	for _, known := range ThemeTypes {
		if t == known {
			return t
		}
	}
	return DefaultTheme
}
