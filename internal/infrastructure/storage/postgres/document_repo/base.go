// Package document_repo provides PostgreSQL repositories for the DW and PZ documents and
// for staged deliveries.
package document_repo

// qualify prefixes every column with a table alias.
func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
