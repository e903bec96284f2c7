package model

import (
	"strings"
)

// OperationKind tells what an operation does
type OperationKind uint8

// Supported operation kinds
const (
	// OpCopy adds entries for the virtual paths matching some globs, under a destination prefix
	OpCopy OperationKind = iota + 1

	// OpRemove removes the virtual paths equal to or nested under some targets.
	//
	// When declared on a dependency, the targets also exclude any deeper dependency
	// whose version id or dependency name matches.
	OpRemove
)

// Operation verbs, as persisted
const (
	VerbCopy      = "cp"
	VerbRemove    = "rm"
	VerbDepRemove = "dep-rm"
)

var verbs = map[string]OperationKind{
	VerbCopy:      OpCopy,
	"copy":        OpCopy,
	VerbRemove:    OpRemove,
	"remove":      OpRemove,
	VerbDepRemove: OpRemove,
}

func (k OperationKind) String() string {
	switch k {
	case OpCopy:
		return "copy"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Operation is a declarative transformation of a virtual file map.
//
// Operations are decoded once from their persisted tokens, e.g. ["cp", "*.txt", "dep-txt/"].
type Operation struct {
	Kind OperationKind

	// Patterns are the globs selecting the entries to copy
	Patterns []string

	// Destination is the prefix copies are placed under
	Destination string

	// Targets are the paths (or globs) to remove
	Targets []string

	verb string
}

// Copy builds a copy operation
func Copy(destination string, patterns ...string) Operation {
	return Operation{Kind: OpCopy, Patterns: patterns, Destination: destination, verb: VerbCopy}
}

// Remove builds a remove operation
func Remove(targets ...string) Operation {
	return Operation{Kind: OpRemove, Targets: targets, verb: VerbRemove}
}

// ParseOperation decodes an operation from its tokens
func ParseOperation(tokens []string) (Operation, error) {
	if len(tokens) == 0 {
		return Operation{}, ErrMalformedOperation.Detailf("empty operation")
	}
	kind, ok := verbs[tokens[0]]
	if !ok {
		return Operation{}, ErrMalformedOperation.Detailf("unknown operation %q in %q", tokens[0], strings.Join(tokens, " "))
	}
	args := tokens[1:]
	for _, arg := range args {
		if arg == "" {
			return Operation{}, ErrMalformedOperation.Detailf("empty argument in %q", tokens)
		}
	}

	switch kind {
	case OpCopy:
		if len(args) < 2 {
			return Operation{}, ErrMalformedOperation.Detailf("%q expects at least one pattern and a destination: %q", tokens[0], strings.Join(tokens, " "))
		}
		return Operation{
			Kind:        OpCopy,
			Patterns:    append([]string(nil), args[:len(args)-1]...),
			Destination: args[len(args)-1],
			verb:        tokens[0],
		}, nil
	default:
		if len(args) < 1 {
			return Operation{}, ErrMalformedOperation.Detailf("%q expects at least one target: %q", tokens[0], strings.Join(tokens, " "))
		}
		return Operation{
			Kind:    OpRemove,
			Targets: append([]string(nil), args...),
			verb:    tokens[0],
		}, nil
	}
}

// ParseOperationString decodes an operation from a space separated command, e.g. "cp *.txt dep-txt/"
func ParseOperationString(op string) (Operation, error) {
	return ParseOperation(strings.Fields(op))
}

// Verb returns the persisted verb of the operation
func (o Operation) Verb() string {
	if o.verb != "" {
		return o.verb
	}
	if o.Kind == OpCopy {
		return VerbCopy
	}
	return VerbRemove
}

// Tokens encodes the operation as positional tokens
func (o Operation) Tokens() []string {
	res := []string{o.Verb()}
	switch o.Kind {
	case OpCopy:
		res = append(res, o.Patterns...)
		res = append(res, o.Destination)
	case OpRemove:
		res = append(res, o.Targets...)
	}
	return res
}

func (o Operation) String() string {
	return strings.Join(o.Tokens(), " ")
}

// MarshalYAML renders the operation as its tokens
func (o Operation) MarshalYAML() (interface{}, error) {
	return o.Tokens(), nil
}

// Operations is an ordered list of operations
type Operations []Operation

// RemoveTargets collects the targets of all remove operations, in order
func (ops Operations) RemoveTargets() []string {
	var res []string
	for _, op := range ops {
		if op.Kind == OpRemove {
			res = append(res, op.Targets...)
		}
	}
	return res
}

func parseOperations(tokens [][]string) (Operations, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	ops := make(Operations, 0, len(tokens))
	for _, t := range tokens {
		op, err := ParseOperation(t)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
