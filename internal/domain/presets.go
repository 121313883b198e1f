package domain

import (
	"fmt"
	"strings"
)

// Preset groups.
const (
	GroupClassic   = "Classic"
	GroupExotic    = "Exotic"
	GroupLegendary = "Legendary"
)

type presetDef struct {
	group, name, primary, secondary string
}

var presetDefs = []presetDef{
	{GroupClassic, "White", "#ffffff", "#ffffff"},
	{GroupClassic, "Electric Blue", "#00d4ff", "#0080ff"},
	{GroupClassic, "Neon Pink", "#ff006e", "#ff66b3"},
	{GroupClassic, "Cyber Purple", "#b744ff", "#7b2cbf"},
	{GroupClassic, "Toxic Green", "#39ff14", "#00ff00"},
	{GroupClassic, "Fire", "#ff4500", "#ffa500"},
	{GroupClassic, "Ocean", "#00ffff", "#1e90ff"},
	{GroupClassic, "Sunset", "#ff6b35", "#f7931e"},

	{GroupExotic, "Vaporwave", "#ff71ce", "#01cdfe"},
	{GroupExotic, "Matrix", "#00ff41", "#008f11"},
	{GroupExotic, "Lava Lamp", "#ff00ff", "#ffff00"},
	{GroupExotic, "Aurora", "#00ff9f", "#00b4d8"},
	{GroupExotic, "Cyberpunk", "#fcee09", "#ff0080"},
	{GroupExotic, "Midnight", "#9d4edd", "#3c096c"},
	{GroupExotic, "Radioactive", "#ccff00", "#ff006e"},
	{GroupExotic, "Synthwave", "#f72585", "#4361ee"},
	{GroupExotic, "Holographic", "#7209b7", "#4cc9f0"},
	{GroupExotic, "Plasma", "#ff006e", "#8338ec"},
	{GroupExotic, "Neon Jungle", "#06ffa5", "#fffb00"},
	{GroupExotic, "Deep Space", "#4895ef", "#560bad"},
	{GroupExotic, "Retro Wave", "#f72585", "#b5179e"},
	{GroupExotic, "Toxic Waste", "#d4ff00", "#7209b7"},

	{GroupLegendary, "Blade Runner", "#ff6e00", "#00ffff"},
	{GroupLegendary, "Tron Legacy", "#00d9ff", "#1a1a1a"},
	{GroupLegendary, "Star Wars", "#ffe81f", "#000000"},
	{GroupLegendary, "Lightsaber Duel", "#0000ff", "#ff0000"},
	{GroupLegendary, "Stranger Things", "#ed1c24", "#000000"},
	{GroupLegendary, "Dune Spice", "#ff6b00", "#0047ab"},
	{GroupLegendary, "Black Panther", "#a020f0", "#00ffff"},
	{GroupLegendary, "Avatar Pandora", "#00ff00", "#0080ff"},
	{GroupLegendary, "Guardians Galaxy", "#ff6ec7", "#8a2be2"},
	{GroupLegendary, "Evangelion", "#00ff00", "#9400d3"},
	{GroupLegendary, "Drive", "#ff1493", "#ff4500"},
	{GroupLegendary, "Mad Max Fury", "#ff4500", "#ffa500"},
}

var colorPresets = buildPresets()

func buildPresets() []ColorScheme {
	out := make([]ColorScheme, 0, len(presetDefs))
	for _, d := range presetDefs {
		primary, err := ParseRGB(d.primary)
		if err != nil {
			panic(fmt.Sprintf("preset %s: %v", d.name, err))
		}
		secondary, err := ParseRGB(d.secondary)
		if err != nil {
			panic(fmt.Sprintf("preset %s: %v", d.name, err))
		}
		out = append(out, ColorScheme{
			Name:      d.name,
			Group:     d.group,
			Primary:   primary,
			Secondary: secondary,
		})
	}
	return out
}

// ColorPresets returns a copy of the preset catalogue in display order.
func ColorPresets() []ColorScheme {
	out := make([]ColorScheme, len(colorPresets))
	copy(out, colorPresets)
	return out
}

// PresetGroups returns the group names in display order.
func PresetGroups() []string {
	return []string{GroupClassic, GroupExotic, GroupLegendary}
}

// PresetByName looks up a preset, ignoring case and surrounding space.
func PresetByName(name string) (ColorScheme, error) {
	want := strings.TrimSpace(name)
	for _, p := range colorPresets {
		if strings.EqualFold(p.Name, want) {
			return p, nil
		}
	}
	return ColorScheme{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// NextPreset returns the preset after the one named, wrapping around.
// An unknown name yields the first preset.
func NextPreset(name string) ColorScheme {
	for i, p := range colorPresets {
		if p.Name == name {
			return colorPresets[(i+1)%len(colorPresets)]
		}
	}
	return colorPresets[0]
}

// DefaultColorScheme returns the "White" preset.
func DefaultColorScheme() ColorScheme {
	return colorPresets[0]
}
