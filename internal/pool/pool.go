// Package pool recycles the string builders of the render path, which
// rebuilds the whole screen every frame.
package pool

import (
	"strings"
	"sync"
)

// maxPooledCap drops builders that grew for one unusually large frame.
const maxPooledCap = 1 << 20

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// GetStringBuilder returns an empty builder.
func GetStringBuilder() *strings.Builder {
	sb := stringBuilderPool.Get().(*strings.Builder)
	sb.Reset()
	return sb
}

// PutStringBuilder returns sb to the pool. Nil and oversized builders are dropped.
func PutStringBuilder(sb *strings.Builder) {
	if sb == nil || sb.Cap() > maxPooledCap {
		return
	}
	sb.Reset()
	stringBuilderPool.Put(sb)
}
