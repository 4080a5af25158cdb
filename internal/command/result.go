package command

// Result is what a command hands back to the REPL or a network client.
// Rows hold stored-form values (DATE as "2006-01-02") so they render and
// encode the same way the table documents do.
type Result struct {
	Message string          `json:"message,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Types   []string        `json:"types,omitempty"`
	Rows    [][]interface{} `json:"rows,omitempty"`
	Error   string          `json:"error,omitempty"`
}
