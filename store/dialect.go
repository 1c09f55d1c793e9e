package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// dialect is everything that differs between SQL backends.
type dialect struct {
	// driver is the database/sql driver name.
	driver string
	// prepare may rewrite the DSN or create what the backend needs on disk.
	prepare func(dsn string) (string, error)
	// memory reports whether dsn names a database that lives inside a single
	// connection. Such pools are capped at one connection and skip setup.
	memory func(dsn string) bool
	// setup runs once per connection pool before migrations.
	setup []string
	// schema is applied statement by statement, idempotently.
	schema []string
	// numbered placeholders ($1, $2, ...) instead of ?.
	numbered bool
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]dialect{}
)

// register makes a backend available under kind. Registering a kind twice
// panics.
func register(kind string, d dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()

	if kind == "" {
		panic("store: register called with empty kind")
	}
	if d.driver == "" {
		panic("store: register called without a driver")
	}
	if _, exists := dialects[kind]; exists {
		panic(fmt.Sprintf("store: dialect already registered for kind=%q", kind))
	}
	dialects[kind] = d
}

func lookup(kind string) (dialect, error) {
	if kind == "" {
		return dialect{}, fmt.Errorf("store: missing kind")
	}
	dialectsMu.RLock()
	d, ok := dialects[kind]
	dialectsMu.RUnlock()
	if !ok {
		return dialect{}, fmt.Errorf("unsupported storage kind=%s (registered: %v)", kind, Kinds())
	}
	return d, nil
}

// Kinds lists the registered backends.
func Kinds() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// rebind rewrites ? placeholders for the dialect. Queries in this package
// never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
