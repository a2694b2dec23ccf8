package model

import (
	"sort"
	"strings"
)

// TitleIcon names one of the preset header icons.
type TitleIcon string

const (
	IconHeart  TitleIcon = "heart"
	IconCat    TitleIcon = "cat"
	IconBook   TitleIcon = "book"
	IconRobot  TitleIcon = "robot"
	IconBox    TitleIcon = "box"
	IconGitHub TitleIcon = "github"
)

// PresetIcons maps title icon names to the glyph shown in the header.
var PresetIcons = map[TitleIcon]string{
	IconHeart:  "❤️",
	IconCat:    "🐱",
	IconBook:   "📚",
	IconRobot:  "🤖",
	IconBox:    "📦",
	IconGitHub: "🐙",
}

// Default settings values.
const (
	DefaultTitle = "ClipBox"
	DefaultIcon  = IconBox
)

// Settings holds the user-facing popup settings.
type Settings struct {
	Title string    `json:"title"`
	Icon  TitleIcon `json:"icon"`
}

// DefaultSettings returns the settings used on first load.
func DefaultSettings() Settings {
	return Settings{
		Title: DefaultTitle,
		Icon:  DefaultIcon,
	}
}

// Normalize trims the title and replaces blank or unknown values with defaults.
func (s Settings) Normalize() Settings {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if !s.Icon.Valid() {
		s.Icon = DefaultIcon
	}
	return s
}

// Glyph returns the header glyph for the configured icon.
func (s Settings) Glyph() string {
	if g, ok := PresetIcons[s.Icon]; ok {
		return g
	}
	return PresetIcons[DefaultIcon]
}

// Valid reports whether the icon is one of the presets.
func (i TitleIcon) Valid() bool {
	_, ok := PresetIcons[i]
	return ok
}

// ParseTitleIcon parses an icon name (case-insensitive).
func ParseTitleIcon(s string) (TitleIcon, bool) {
	icon := TitleIcon(strings.ToLower(strings.TrimSpace(s)))
	return icon, icon.Valid()
}

// TitleIcons returns all preset icon names in a stable order.
func TitleIcons() []TitleIcon {
	icons := make([]TitleIcon, 0, len(PresetIcons))
	for i := range PresetIcons {
		icons = append(icons, i)
	}
	sort.Slice(icons, func(a, b int) bool { return icons[a] < icons[b] })
	return icons
}
