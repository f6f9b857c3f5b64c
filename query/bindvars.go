package query

import (
	"strconv"
	"strings"

	"github.com/distributhor/arangotools/fault"
)

const collectionParam = "@collection"

// bindVars collects bind parameters while a query is assembled.
type bindVars map[string]any

func newBindVars(collection string) bindVars {
	return bindVars{collectionParam: collection}
}

// attribute binds a property name. Dot paths are bound as a list of
// segments so "address.city" reaches the nested attribute.
func (b bindVars) attribute(param, name string) string {
	if strings.Contains(name, ".") {
		b[param] = strings.Split(name, ".")
	} else {
		b[param] = name
	}
	return "d.@" + param
}

func (b bindVars) value(param string, v any) string {
	b[param] = v
	return "@" + param
}

// merge copies other into b, refusing to overwrite an existing parameter.
func (b bindVars) merge(other map[string]any) error {
	for k, v := range other {
		if _, ok := b[k]; ok {
			return fault.InvalidInput("bind parameter " + strconv.Quote(k) + " is already defined")
		}
		b[k] = v
	}
	return nil
}

// paramName turns a property name into something usable as a bind parameter
// name: anything outside [A-Za-z0-9_] becomes an underscore.
func paramName(name string, suffix ...string) string {
	sb := make([]byte, 0, len(name)+8)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sb = append(sb, c)
		} else {
			sb = append(sb, '_')
		}
	}
	for _, s := range suffix {
		sb = append(sb, '_')
		sb = append(sb, s...)
	}
	return string(sb)
}

// equality binds name and value and returns "d.@name == @value".
func (b bindVars) equality(nameParam, valueParam string, nv NamedValue) string {
	return b.attribute(nameParam, nv.Name) + " == " + b.value(valueParam, nv.Value)
}
