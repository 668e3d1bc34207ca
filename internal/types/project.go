package types

// Project owns its workflows exclusively; ids are backend-assigned and never
// reused within their parent scope.
type Project struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Workflows []Workflow `json:"workflows"`
}

type Workflow struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

type Task struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
}
