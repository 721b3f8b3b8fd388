package asana

// Task is the remote Asana work item, identified by gid.
// Only the attributes the sync pipeline consumes are decoded.
type Task struct {
	GID          string        `json:"gid"`
	Name         string        `json:"name"`
	Completed    bool          `json:"completed"`
	CustomFields []CustomField `json:"custom_fields"`
	Memberships  []Membership  `json:"memberships"`
}

// CustomField is a user-defined named data slot on a task.
type CustomField struct {
	GID       string `json:"gid"`
	Name      string `json:"name"`
	TextValue string `json:"text_value"`
}

// Membership associates a task with a project board and the section
// (column) it currently occupies there.
type Membership struct {
	Project Project `json:"project"`
	Section Section `json:"section"`
}

// Project is a board reference inside a membership.
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Section is a board column reference inside a membership.
type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// taskEnvelope matches Asana's {"data": {...}} response wrapper.
type taskEnvelope struct {
	Data Task `json:"data"`
}
