package models

import "time"

// Component is a visual element placed on a screen by the design surface
// (or by the AI bridge).
type Component struct {
	ID       string            `json:"id"`
	ScreenID string            `json:"screenId,omitempty"`
	Type     string            `json:"type"`
	Position Point             `json:"position"`
	Size     Dimensions        `json:"size"`
	Styles   map[string]string `json:"styles,omitempty"`
	Props    map[string]any    `json:"props,omitempty"`

	// Generated links the component back to machine-authored code, when
	// code generation has run for it.
	Generated *GeneratedMeta `json:"generated,omitempty"`
}

// Point is a canvas position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is a canvas size in pixels.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GeneratedMeta records which code artifacts were produced for a component
// and whether a human has since hand-edited the generated output.
type GeneratedMeta struct {
	Files       []string  `json:"files,omitempty"`
	Hooks       []string  `json:"hooks,omitempty"`
	HandEdited  bool      `json:"handEdited"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	out := c
	out.Styles = cloneStringMap(c.Styles)
	out.Props = cloneAnyMap(c.Props)
	if c.Generated != nil {
		meta := *c.Generated
		meta.Files = append([]string(nil), c.Generated.Files...)
		meta.Hooks = append([]string(nil), c.Generated.Hooks...)
		out.Generated = &meta
	}
	return out
}
