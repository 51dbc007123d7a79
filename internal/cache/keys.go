package cache

import (
	"sort"
	"strconv"
	"strings"
)

// keyPrefix namespaces cache keys apart from read-model hashes.
const keyPrefix = "geosearch:cache:"

// keyEscaper keeps the '&' and '=' separators unambiguous when they occur
// inside parameter values (keywords, addresses).
var keyEscaper = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D")

// Key builds a deterministic cache key from a namespace and a canonical
// parameter set. Parameter names are sorted so semantically identical queries
// collide to the same key regardless of argument order.
func Key(namespace string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(namespace)
	b.WriteByte(':')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(keyEscaper.Replace(name))
		b.WriteByte('=')
		b.WriteString(keyEscaper.Replace(params[name]))
	}
	return b.String()
}

// Pattern builds the glob matching every key in a namespace.
func Pattern(namespace string) string {
	return keyPrefix + namespace + ":*"
}

// Float normalizes a numeric parameter to six decimal places so equivalent
// representations (5, 5.0, 5.000000) produce one canonical form.
func Float(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
