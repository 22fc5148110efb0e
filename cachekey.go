package descarteslabs

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the cache key for one operation call. Positional args
// keep their order; keyword args are folded in sorted by name, so callers
// supplying the same keywords in any order share one entry. The operation
// name prefixes the digest, giving each cached method its own key namespace.
//
// Every component is length-prefixed and the arg count is written before the
// args, so distinct calls can never hash the same byte stream regardless of
// the characters the components contain.
func Fingerprint(op string, args []string, kwargs map[string]string) string {
	digest := xxhash.New()
	writeComponent(digest, op)
	writeComponent(digest, strconv.Itoa(len(args)))
	for _, arg := range args {
		writeComponent(digest, arg)
	}
	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for name := range kwargs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			writeComponent(digest, name)
			writeComponent(digest, kwargs[name])
		}
	}
	return op + ":" + strconv.FormatUint(digest.Sum64(), 16)
}

func writeComponent(digest *xxhash.Digest, s string) {
	_, _ = digest.WriteString(strconv.Itoa(len(s)))
	_, _ = digest.WriteString(":")
	_, _ = digest.WriteString(s)
}
