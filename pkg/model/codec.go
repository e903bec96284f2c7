package model

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:    false,
	SortMapKeys:   true,
	IndentionStep: 2,
}.Froze()

// rawField is an object key unknown to this package, kept with its value as found
type rawField struct {
	key   string
	value []byte
}

func readRaw(iter *jsoniter.Iterator, key string) rawField {
	return rawField{key: key, value: append([]byte(nil), iter.SkipAndReturnBytes()...)}
}

// Decode metadata from its persisted JSON form.
//
// Operations are parsed at this stage: a malformed operation fails the decoding.
// Unknown keys are kept and written back by Encode.
func Decode(data []byte) (*Metadata, error) {
	iter := jsonAPI.BorrowIterator(data)
	defer jsonAPI.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, ErrValidation.Detailf("metadata is not a JSON object")
	}

	m := &Metadata{}
	var err error
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		switch key {
		case "version_id":
			m.VersionID = it.ReadString()
		case "source":
			it.ReadVal(&m.Source)
		case "files":
			it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				var f FileDescriptor
				if f, err = decodeFile(it); err != nil {
					return false
				}
				m.Files = append(m.Files, f)
				return true
			})
		case "dependencies":
			it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				var d Dependency
				if d, err = decodeDependency(it); err != nil {
					return false
				}
				m.Dependencies = append(m.Dependencies, d)
				return true
			})
		case "operations":
			m.Operations, err = readOperations(it)
		default:
			m.extra = append(m.extra, readRaw(it, key))
		}
		return err == nil && it.Error == nil
	})
	if err != nil {
		return nil, err
	}
	if iter.Error != nil {
		return nil, ErrValidation.Wrap(iter.Error)
	}
	return m, nil
}

func decodeFile(iter *jsoniter.Iterator) (FileDescriptor, error) {
	var f FileDescriptor
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		switch key {
		case "path":
			f.Path = it.ReadString()
		case "size":
			f.Size = it.ReadInt64()
		case "tags":
			it.ReadVal(&f.Tags)
		default:
			// any other string-valued key is a digest, named after its algorithm
			if it.WhatIsNext() != jsoniter.StringValue {
				f.extra = append(f.extra, readRaw(it, key))
				break
			}
			if f.Digests == nil {
				f.Digests = make(map[string]string)
			}
			f.Digests[key] = it.ReadString()
		}
		return it.Error == nil
	})
	if iter.Error != nil {
		return FileDescriptor{}, ErrValidation.Detailf("file %q", f.Path).Wrap(iter.Error)
	}
	return f, nil
}

func decodeDependency(iter *jsoniter.Iterator) (Dependency, error) {
	var (
		d   Dependency
		err error
	)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		switch key {
		case "version_id":
			d.VersionID = it.ReadString()
		case "name":
			d.Name = it.ReadString()
		case "path":
			d.Path = it.ReadString()
		case "internal":
			d.Internal = it.ReadBool()
		case "operations":
			d.Operations, err = readOperations(it)
		default:
			d.extra = append(d.extra, readRaw(it, key))
		}
		return err == nil && it.Error == nil
	})
	if err != nil {
		return Dependency{}, err
	}
	if iter.Error != nil {
		return Dependency{}, ErrValidation.Detailf("dependency %q", d.VersionID).Wrap(iter.Error)
	}
	return d, nil
}

func readOperations(iter *jsoniter.Iterator) (Operations, error) {
	var tokens [][]string
	iter.ReadVal(&tokens)
	if iter.Error != nil {
		return nil, nil
	}
	return parseOperations(tokens)
}

// Encode metadata to its persisted JSON form.
//
// The output is deterministic: source keys and digests are sorted, files,
// dependencies and operations keep their declaration order.
func (m *Metadata) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("version_id")
	stream.WriteString(m.VersionID)

	if len(m.Source) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("source")
		writeStringMap(stream, m.Source)
	}

	if len(m.Files) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("files")
		stream.WriteArrayStart()
		for i, f := range m.Files {
			if i > 0 {
				stream.WriteMore()
			}
			writeFile(stream, f)
		}
		stream.WriteArrayEnd()
	}

	if len(m.Dependencies) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("dependencies")
		stream.WriteArrayStart()
		for i, d := range m.Dependencies {
			if i > 0 {
				stream.WriteMore()
			}
			writeDependency(stream, d)
		}
		stream.WriteArrayEnd()
	}

	if len(m.Operations) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("operations")
		writeOperations(stream, m.Operations)
	}
	writeExtra(stream, m.extra)
	stream.WriteObjectEnd()
	stream.WriteRaw("\n")

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeStringMap(stream *jsoniter.Stream, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stream.WriteObjectStart()
	for i, k := range keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k)
		stream.WriteString(values[k])
	}
	stream.WriteObjectEnd()
}

func writeFile(stream *jsoniter.Stream, f FileDescriptor) {
	stream.WriteObjectStart()
	stream.WriteObjectField("path")
	stream.WriteString(f.Path)
	stream.WriteMore()
	stream.WriteObjectField("size")
	stream.WriteInt64(f.Size)
	for _, algo := range f.Algorithms() {
		stream.WriteMore()
		stream.WriteObjectField(algo)
		stream.WriteString(f.Digests[algo])
	}
	if len(f.Tags) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("tags")
		writeStrings(stream, f.Tags)
	}
	writeExtra(stream, f.extra)
	stream.WriteObjectEnd()
}

func writeDependency(stream *jsoniter.Stream, d Dependency) {
	stream.WriteObjectStart()
	stream.WriteObjectField("version_id")
	stream.WriteString(d.VersionID)
	if d.Name != "" {
		stream.WriteMore()
		stream.WriteObjectField("name")
		stream.WriteString(d.Name)
	}
	if d.Path != "" {
		stream.WriteMore()
		stream.WriteObjectField("path")
		stream.WriteString(d.Path)
	}
	if d.Internal {
		stream.WriteMore()
		stream.WriteObjectField("internal")
		stream.WriteBool(true)
	}
	if len(d.Operations) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("operations")
		writeOperations(stream, d.Operations)
	}
	writeExtra(stream, d.extra)
	stream.WriteObjectEnd()
}

func writeOperations(stream *jsoniter.Stream, ops Operations) {
	stream.WriteArrayStart()
	for i, op := range ops {
		if i > 0 {
			stream.WriteMore()
		}
		writeStrings(stream, op.Tokens())
	}
	stream.WriteArrayEnd()
}

func writeStrings(stream *jsoniter.Stream, values []string) {
	stream.WriteArrayStart()
	for i, v := range values {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteString(v)
	}
	stream.WriteArrayEnd()
}

// writeExtra writes back unknown keys. They always follow some known key.
func writeExtra(stream *jsoniter.Stream, fields []rawField) {
	for _, field := range fields {
		stream.WriteMore()
		stream.WriteObjectField(field.key)
		iter := jsonAPI.BorrowIterator(field.value)
		copyValue(iter, stream)
		if iter.Error != nil && stream.Error == nil {
			stream.Error = iter.Error
		}
		jsonAPI.ReturnIterator(iter)
	}
}

// copyValue re-indents a JSON value, keeping the order of object keys
func copyValue(iter *jsoniter.Iterator, stream *jsoniter.Stream) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		empty := true
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			if empty {
				stream.WriteObjectStart()
				empty = false
			} else {
				stream.WriteMore()
			}
			stream.WriteObjectField(key)
			copyValue(it, stream)
			return it.Error == nil
		})
		if empty {
			stream.WriteEmptyObject()
		} else {
			stream.WriteObjectEnd()
		}
	case jsoniter.ArrayValue:
		empty := true
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if empty {
				stream.WriteArrayStart()
				empty = false
			} else {
				stream.WriteMore()
			}
			copyValue(it, stream)
			return it.Error == nil
		})
		if empty {
			stream.WriteEmptyArray()
		} else {
			stream.WriteArrayEnd()
		}
	case jsoniter.StringValue:
		stream.WriteString(iter.ReadString())
	case jsoniter.NumberValue:
		stream.WriteRaw(string(iter.ReadNumber()))
	case jsoniter.BoolValue:
		stream.WriteBool(iter.ReadBool())
	default:
		iter.ReadNil()
		stream.WriteNil()
	}
}
