// Package migrations embeds the schema files applied by cmd/migrate.
// NNN_name.sql applies a step and NNN_name.down.sql reverts it.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Up lists the apply scripts in ascending order.
func Up() []string {
	return list(func(name string) bool { return !strings.HasSuffix(name, ".down.sql") }, false)
}

// Down lists the revert scripts, newest first.
func Down() []string {
	return list(func(name string) bool { return strings.HasSuffix(name, ".down.sql") }, true)
}

// Read returns the contents of one script.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

func list(keep func(string) bool, reverse bool) []string {
	names, _ := fs.Glob(files, "*.sql")
	out := names[:0]
	for _, n := range names {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	}
	return out
}
