package models

// Department is one entry of the department directory.
type Department struct {
	Label       string `yaml:"label"`        // Human-readable name shown in the menu, e.g. "soporte"
	Target      string `yaml:"target"`       // Routing target: a phone-style address or an in-chat instruction
	HandledHere bool   `yaml:"handled_here"` // The department is served in the current chat, no deep link is built
}
