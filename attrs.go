package htmlutils

import (
	"strings"

	"golang.org/x/net/html"
)

// Attributes is an ordered set of HTML attributes. Keys are unique and
// iteration follows insertion order, so serialization is deterministic.
//
// Only the entries explicitly stored in the mapping are ever visited;
// there is no fallback or inherited lookup.
//
// The zero value is an empty mapping ready to use. A nil *Attributes
// behaves as an empty mapping for every method except Set.
type Attributes struct {
	list []html.Attribute
}

// NewAttributes returns a mapping built from alternating key/value
// pairs. A trailing key without a value is stored with an empty value.
func NewAttributes(pairs ...string) *Attributes {
	a := &Attributes{list: make([]html.Attribute, 0, (len(pairs)+1)/2)}
	for i := 0; i < len(pairs); i += 2 {
		val := ""
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		a.Set(pairs[i], val)
	}
	return a
}

// Set sets (or adds) the attribute key=val. An existing key keeps its
// position.
func (a *Attributes) Set(key, val string) {
	for i, attr := range a.list {
		if attr.Key == key {
			a.list[i].Val = val
			return
		}
	}
	a.list = append(a.list, html.Attribute{Key: key, Val: val})
}

// Get returns the value of the named attribute and whether it is present.
func (a *Attributes) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, attr := range a.list {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Has reports whether the named attribute is present.
func (a *Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Delete removes the named attribute if present.
func (a *Attributes) Delete(key string) {
	if a == nil {
		return
	}
	attrs := a.list[:0]
	for _, attr := range a.list {
		if attr.Key != key {
			attrs = append(attrs, attr)
		}
	}
	a.list = attrs
}

// DeleteFunc removes every attribute for which fn returns true.
func (a *Attributes) DeleteFunc(fn func(key, val string) bool) {
	if a == nil {
		return
	}
	attrs := a.list[:0]
	for _, attr := range a.list {
		if !fn(attr.Key, attr.Val) {
			attrs = append(attrs, attr)
		}
	}
	a.list = attrs
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// Keys returns the attribute names in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, len(a.list))
	for i, attr := range a.list {
		keys[i] = attr.Key
	}
	return keys
}

// Each calls fn for every attribute in insertion order.
func (a *Attributes) Each(fn func(key, val string)) {
	if a == nil {
		return
	}
	for _, attr := range a.list {
		fn(attr.Key, attr.Val)
	}
}

// Clone returns an independent copy of the mapping.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return &Attributes{}
	}
	list := make([]html.Attribute, len(a.list))
	copy(list, a.list)
	return &Attributes{list: list}
}

// String renders the mapping the same way AttributesHTML does.
func (a *Attributes) String() string {
	return AttributesHTML(a)
}

// AttributesHTML renders attrs as space separated HTML attributes. An
// attribute with an empty value is written as a bare name (boolean
// attributes such as "checked"); every other value is entity-encoded and
// double quoted.
func AttributesHTML(attrs *Attributes) string {
	if attrs.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, attr := range attrs.list {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(attr.Key)
		if attr.Val == "" {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attr.Val))
		sb.WriteByte('"')
	}
	return sb.String()
}
