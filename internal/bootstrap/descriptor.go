package bootstrap

// TaskDescriptor is the wire form of a task reported by a builder plugin's
// Describe() RPC: enough for the host to register a task.Task whose
// action re-invokes the task by name inside the plugin process.
type TaskDescriptor struct {
	Name         string
	Description  string
	Interactive  bool
	Predecessors []string
}

// ProjectDescriptor is the wire form of a project.Project reported by a
// builder plugin, recursively covering sub-projects (spec.md §4.G/H).
type ProjectDescriptor struct {
	Name         string
	Version      string
	BuilderClass string
	Tasks        []TaskDescriptor
	SubProjects  []ProjectDescriptor
}
