// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gen provides the buffered, gofmt-on-Content source emitter shared
// by genmodel, genbinary and genjson, the way protogen.GeneratedFile backs
// every protoc-gen-go output file.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
)

// File accumulates one generated Go source file.
type File struct {
	Package string
	body    bytes.Buffer
	imports map[string]bool
}

// NewFile starts a generated file in the given package.
func NewFile(pkg string) *File {
	return &File{Package: pkg, imports: make(map[string]bool)}
}

// P prints a line, concatenating its arguments with fmt.Sprint semantics,
// mirroring protogen.GeneratedFile.P.
func (f *File) P(v ...interface{}) {
	for _, x := range v {
		fmt.Fprint(&f.body, x)
	}
	fmt.Fprintln(&f.body)
}

// Import records that importPath must be imported by the generated file.
// Repeated calls with the same path are harmless.
func (f *File) Import(importPath string) {
	f.imports[importPath] = true
}

// Content returns the formatted file contents, with the import block
// assembled from every path registered via Import.
func (f *File) Content() ([]byte, error) {
	var header bytes.Buffer
	fmt.Fprintln(&header, "// Code generated by pbjc. DO NOT EDIT.")
	fmt.Fprintln(&header)
	fmt.Fprintf(&header, "package %s\n\n", f.Package)

	if len(f.imports) > 0 {
		paths := make([]string, 0, len(f.imports))
		for p := range f.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		fmt.Fprintln(&header, "import (")
		for _, p := range paths {
			fmt.Fprintf(&header, "\t%q\n", p)
		}
		fmt.Fprintln(&header, ")")
		fmt.Fprintln(&header)
	}

	full := append(header.Bytes(), f.body.Bytes()...)
	out, err := format.Source(full)
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w\n%s", err, full)
	}
	return out, nil
}
