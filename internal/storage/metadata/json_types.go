package metadata

// TableFileExt is the extension of a persisted table document
const TableFileExt = ".json"

// TableDocument is the on-disk shape of one table:
// column definitions plus every row as its raw ordered value list
type TableDocument struct {
	Columns []ColumnMeta    `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

type ColumnMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
