// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"encoding/json"
	"os"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/lookup"
	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// Cache is the lookup-helper pre-population named in spec.md §6 driver input
// (c): the fully-qualified message/enum names known from a prior build of
// some other proto root, so a build that only has one side of a
// cross-root reference in its own Files can still resolve it. Unlike the
// canonical protobuf JSON mapping runtime/pbjson exists to implement, this is
// a flat, internal bookkeeping format with no proto3 semantics (no quoted
// int64s, no base64 bytes) to honor, so it is read and written with
// encoding/json rather than pbjson.
type Cache struct {
	Path     string   `json:"-"`
	Messages []string `json:"messages"`
	Enums    []string `json:"enums"`
}

// LoadCache reads the cache file at path. A missing file is not an error: it
// means no prior build has populated one yet. An empty path disables the
// cache entirely (nil, nil).
func LoadCache(path string) (*Cache, error) {
	if path == "" {
		return nil, nil
	}
	c := &Cache{Path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, pberrs.New(pberrs.IOFailure, "reading lookup cache %q: %v", path, err).Wrap(err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, pberrs.New(pberrs.JSONParse, "parsing lookup cache %q: %v", path, err).Wrap(err)
	}
	c.Path = path
	return c, nil
}

// Save writes c back to its Path, overwriting any prior contents. A no-op
// when Path is empty.
func (c *Cache) Save() error {
	if c == nil || c.Path == "" {
		return nil
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return pberrs.New(pberrs.JSONParse, "encoding lookup cache: %v", err).Wrap(err)
	}
	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return pberrs.New(pberrs.IOFailure, "writing lookup cache %q: %v", c.Path, err).Wrap(err)
	}
	return nil
}

// seedTable registers every name c knows about into tbl as a bare stub
// declaration, so a field reference naming a type from a prior build
// resolves instead of failing with an unresolved-type schema violation. The
// stub carries only the fully-qualified name: the prior build has already
// emitted real Go code for it, so nothing in this build ever needs its
// fields, only its name.
func (c *Cache) seedTable(tbl *lookup.Table) {
	if c == nil {
		return
	}
	for _, name := range c.Messages {
		if _, exists := tbl.Messages[name]; !exists {
			tbl.Messages[name] = &ast.Message{Name: name, FullName: name}
		}
	}
	for _, name := range c.Enums {
		if _, exists := tbl.Enums[name]; !exists {
			tbl.Enums[name] = &ast.Enum{Name: name, FullName: name}
		}
	}
}

// record adds every name tbl now knows about (this build's own declarations
// plus whatever was seeded in) so the next build's cache is complete.
func (c *Cache) record(tbl *lookup.Table) {
	if c == nil {
		return
	}
	c.Messages = c.Messages[:0]
	for name := range tbl.Messages {
		c.Messages = append(c.Messages, name)
	}
	c.Enums = c.Enums[:0]
	for name := range tbl.Enums {
		c.Enums = append(c.Enums, name)
	}
}
