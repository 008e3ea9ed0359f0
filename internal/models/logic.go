package models

// LogicGraph is the node-based program attached to a project: nodes wired
// by connections, plus the named variables and functions they reference.
type LogicGraph struct {
	Nodes       []LogicNode  `json:"nodes"`
	Connections []Connection `json:"connections"`
	Variables   []Variable   `json:"variables"`
	Functions   []Function   `json:"functions"`
}

// LogicNode is one node in the graph: an event, action, condition,
// variable accessor, or function call.
type LogicNode struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Position Point  `json:"position"`
	Inputs   []Port `json:"inputs,omitempty"`
	Outputs  []Port `json:"outputs,omitempty"`
}

// Port is a typed input or output on a logic node.
type Port struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DataType string `json:"dataType,omitempty"`
}

// Connection kinds. Exec edges carry control flow; data edges carry values.
const (
	ConnectionExec = "exec"
	ConnectionData = "data"
)

// Connection links an output port of one node to an input port of another.
type Connection struct {
	ID         string `json:"id"`
	FromNodeID string `json:"fromNodeId"`
	FromPortID string `json:"fromPortId,omitempty"`
	ToNodeID   string `json:"toNodeId"`
	ToPortID   string `json:"toPortId,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// Variable is a named value usable from logic nodes.
type Variable struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Initial any    `json:"initial,omitempty"`
}

// Function is a named reusable subgraph or scripted routine.
type Function struct {
	Name       string  `json:"name"`
	Params     []Param `json:"params,omitempty"`
	ReturnType string  `json:"returnType,omitempty"`
	Body       string  `json:"body,omitempty"`
}

// Param is one parameter of a Function.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Clone returns a deep copy of the graph.
func (g LogicGraph) Clone() LogicGraph {
	out := g
	out.Nodes = make([]LogicNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nc := n
		nc.Inputs = append([]Port(nil), n.Inputs...)
		nc.Outputs = append([]Port(nil), n.Outputs...)
		out.Nodes[i] = nc
	}
	out.Connections = append([]Connection(nil), g.Connections...)
	out.Variables = append([]Variable(nil), g.Variables...)
	out.Functions = make([]Function, len(g.Functions))
	for i, f := range g.Functions {
		fc := f
		fc.Params = append([]Param(nil), f.Params...)
		out.Functions[i] = fc
	}
	return out
}
