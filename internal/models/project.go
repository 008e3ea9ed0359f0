// Package models defines the canonical project model shared by every
// editing surface. These types are pure data: all mutation goes through
// the sync engine, which owns referential integrity between screens,
// components, logic nodes, and code files.
package models

// Project is the root aggregate for one application project. Exactly one
// instance exists per project id per running process; the engine package
// enforces this.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	Screens     []Screen   `json:"screens"`
	Components  []Component `json:"components"`
	Logic       LogicGraph `json:"logic"`
	Code        CodeModel  `json:"code"`
	Settings    Settings   `json:"settings"`
}

// Screen is one page of the application. Screens are ordered; components
// reference their owning screen by id.
type Screen struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Route string `json:"route,omitempty"`
}

// Settings holds project-wide framework and styling choices.
type Settings struct {
	Framework string          `json:"framework,omitempty"`
	Language  string          `json:"language,omitempty"`
	Styling   string          `json:"styling,omitempty"`
	Flags     map[string]bool `json:"flags,omitempty"`
}

// NewProject returns an empty project with all collections initialized,
// ready to accept mutations.
func NewProject(id, name string) *Project {
	return &Project{
		ID:         id,
		Name:       name,
		Version:    "0.1.0",
		Screens:    []Screen{},
		Components: []Component{},
		Logic: LogicGraph{
			Nodes:       []LogicNode{},
			Connections: []Connection{},
			Variables:   []Variable{},
			Functions:   []Function{},
		},
		Code: CodeModel{
			Files: []CodeFile{},
		},
	}
}

// Clone returns a deep copy of the project. Used for snapshots handed to
// save/export so a racing mutation cannot tear the serialized form.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p

	out.Screens = append([]Screen(nil), p.Screens...)

	out.Components = make([]Component, len(p.Components))
	for i := range p.Components {
		out.Components[i] = p.Components[i].Clone()
	}

	out.Logic = p.Logic.Clone()

	out.Code.Files = make([]CodeFile, len(p.Code.Files))
	for i := range p.Code.Files {
		out.Code.Files[i] = p.Code.Files[i].Clone()
	}

	out.Settings.Flags = cloneBoolMap(p.Settings.Flags)
	return &out
}

// ScreenByID returns the screen with the given id, or nil.
func (p *Project) ScreenByID(id string) *Screen {
	for i := range p.Screens {
		if p.Screens[i].ID == id {
			return &p.Screens[i]
		}
	}
	return nil
}

// ComponentByID returns the component with the given id, or nil.
func (p *Project) ComponentByID(id string) *Component {
	for i := range p.Components {
		if p.Components[i].ID == id {
			return &p.Components[i]
		}
	}
	return nil
}

// NodeByID returns the logic node with the given id, or nil.
func (p *Project) NodeByID(id string) *LogicNode {
	for i := range p.Logic.Nodes {
		if p.Logic.Nodes[i].ID == id {
			return &p.Logic.Nodes[i]
		}
	}
	return nil
}

// FileByID returns the code file with the given id, or nil.
func (p *Project) FileByID(id string) *CodeFile {
	for i := range p.Code.Files {
		if p.Code.Files[i].ID == id {
			return &p.Code.Files[i]
		}
	}
	return nil
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
