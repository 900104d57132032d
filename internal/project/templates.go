package project

import (
	"fmt"
	"sort"

	"github.com/tracefinity/tracebin/internal/model"
)

// Template is a named bin configuration preset.
type Template struct {
	Name        string
	Description string
	Config      model.BinConfig
}

// builtinTemplates covers the common starting points. Tool outlines are
// always user-supplied; templates only preset the bin itself.
var builtinTemplates = []Template{
	{
		Name:        "standard",
		Description: "2x2 bin, 4 units tall, magnets and stacking lip",
		Config:      model.DefaultBinConfig(),
	},
	{
		Name:        "shallow-tray",
		Description: "3x3 open tray, 2 units tall, no magnets",
		Config: model.BinConfig{
			GridX: 3, GridY: 3, HeightUnits: 2,
			StackingLip:   true,
			WallThickness: 1.6, CutoutDepth: 10, CutoutClearance: 1,
		},
	},
	{
		Name:        "deep-single",
		Description: "1x1 deep bin, 6 units tall",
		Config: model.BinConfig{
			GridX: 1, GridY: 1, HeightUnits: 6,
			Magnets: true, StackingLip: true,
			WallThickness: 1.6, CutoutDepth: 35, CutoutClearance: 1,
		},
	},
	{
		Name:        "wide-drawer",
		Description: "5x2 bin, 3 units tall, flat rim for drawer use",
		Config: model.BinConfig{
			GridX: 5, GridY: 2, HeightUnits: 3,
			Magnets:       true,
			WallThickness: 1.6, CutoutDepth: 15, CutoutClearance: 1,
		},
	},
}

// Templates returns the built-in templates sorted by name.
func Templates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TemplateByName looks up a built-in template.
func TemplateByName(name string) (Template, error) {
	for _, t := range builtinTemplates {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown template %q", name)
}
