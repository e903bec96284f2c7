// Copyright © 2018 One Concern

package repo

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/storage"
	storagestatus "github.com/oneconcern/depot/pkg/storage/status"
)

// StatusesFileName is the name of the status records of a version, next to its metadata
const StatusesFileName = "ki-statuses.json"

var statusJSON = jsoniter.Config{
	EscapeHTML:    false,
	IndentionStep: 2,
}.Froze()

// Status is a record added to a version after its import, e.g. "qa=passed"
type Status struct {
	Key   string
	Value string
	Flags map[string]string
}

// String representation of a status, e.g. "qa=passed (by=jdoe)"
func (s Status) String() string {
	res := s.Key + "=" + s.Value
	if len(s.Flags) == 0 {
		return res
	}
	names := make([]string, 0, len(s.Flags))
	for name := range s.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	flags := make([]string, 0, len(names))
	for _, name := range names {
		flags = append(flags, name+"="+s.Flags[name])
	}
	return res + " (" + strings.Join(flags, ", ") + ")"
}

func (s Status) validate() error {
	if s.Key == "" {
		return model.ErrValidation.Detailf("status key is empty")
	}
	for name := range s.Flags {
		if name == "" || name == "key" || name == "value" {
			return model.ErrValidation.Detailf("invalid status flag %q", name)
		}
	}
	return nil
}

func statusesKey(id string) string {
	return path.Join(id, StatusesFileName)
}

// Statuses of a version, in the order they were added.
//
// A version without any status yields an empty list.
func (h *Home) Statuses(ctx context.Context, id string) ([]Status, error) {
	data, err := storage.ReadAll(ctx, h.info, statusesKey(id))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) || errors.Is(err, storagestatus.ErrInvalidResource) {
			return []Status{}, nil
		}
		return nil, err
	}
	return decodeStatuses(data)
}

// AddStatus appends a status record to an imported version
func (h *Home) AddStatus(ctx context.Context, id string, s Status) error {
	if err := s.validate(); err != nil {
		return err
	}

	h.statusMx.Lock()
	defer h.statusMx.Unlock()

	has, err := h.Has(ctx, id)
	if err != nil {
		return err
	}
	if !has {
		return status.ErrNotFound.Detailf("%q", id)
	}

	statuses, err := h.Statuses(ctx, id)
	if err != nil {
		return err
	}
	data := encodeStatuses(append(statuses, s))
	return h.info.Put(ctx, statusesKey(id), bytes.NewReader(data), storage.OverWrite)
}

func encodeStatuses(statuses []Status) []byte {
	stream := statusJSON.BorrowStream(nil)
	defer statusJSON.ReturnStream(stream)

	if len(statuses) == 0 {
		stream.WriteEmptyArray()
	} else {
		stream.WriteArrayStart()
		for i, s := range statuses {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectStart()
			stream.WriteObjectField("key")
			stream.WriteString(s.Key)
			stream.WriteMore()
			stream.WriteObjectField("value")
			stream.WriteString(s.Value)
			names := make([]string, 0, len(s.Flags))
			for name := range s.Flags {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				stream.WriteMore()
				stream.WriteObjectField(name)
				stream.WriteString(s.Flags[name])
			}
			stream.WriteObjectEnd()
		}
		stream.WriteArrayEnd()
	}
	stream.WriteRaw("\n")
	return append([]byte(nil), stream.Buffer()...)
}

func decodeStatuses(data []byte) ([]Status, error) {
	iter := statusJSON.BorrowIterator(data)
	defer statusJSON.ReturnIterator(iter)

	statuses := []Status{}
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		var s Status
		it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			value := it.ReadString()
			switch field {
			case "key":
				s.Key = value
			case "value":
				s.Value = value
			default:
				if s.Flags == nil {
					s.Flags = make(map[string]string)
				}
				s.Flags[field] = value
			}
			return it.Error == nil
		})
		statuses = append(statuses, s)
		return it.Error == nil
	})
	if iter.Error != nil {
		return nil, model.ErrValidation.Detailf("invalid %s", StatusesFileName).Wrap(iter.Error)
	}
	return statuses, nil
}
