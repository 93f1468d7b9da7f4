// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler orchestrates a full build: parsing every .proto file
// under a source root, resolving cross-file type references, validating the
// schema, and fanning out the model/binary/JSON generators over the result
// the way protoc-gen-go's CodeGeneratorRequest loop drives generator.go, but
// reading sources directly off disk instead of from a protoc-fed request.
package compiler

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/gen"
	"github.com/hashgraph/pbj-go/compiler/genbinary"
	"github.com/hashgraph/pbj-go/compiler/genjson"
	"github.com/hashgraph/pbj-go/compiler/genmodel"
	"github.com/hashgraph/pbj-go/compiler/lookup"
	"github.com/hashgraph/pbj-go/compiler/parse"
	"github.com/hashgraph/pbj-go/internal/pberrs"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("compiler")

// Result summarizes one successful build.
type Result struct {
	FilesWritten []string
}

// Run parses every .proto file under protoRoot, resolves and validates the
// schema, and writes the generated model and codec sources into destRoot,
// mirroring the target Go package of each input file. cache, when non-nil,
// pre-populates the lookup table with message/enum names known from a prior
// build (spec.md §6 driver input (c)) and is overwritten with the full
// registry on success. Generation of each input file runs concurrently, but
// the first schema violation aborts the whole run (spec.md §7 fail-fast).
func Run(protoRoot, destRoot string, cache *Cache) (*Result, error) {
	paths, err := findProtoFiles(protoRoot)
	if err != nil {
		return nil, pberrs.New(pberrs.IOFailure, "walking proto root %q: %v", protoRoot, err).Wrap(err)
	}
	log.Infof("found %d proto file(s) under %s", len(paths), protoRoot)

	files := make([]*ast.File, 0, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, pberrs.New(pberrs.IOFailure, "reading %q: %v", p, err).Wrap(err)
		}
		rel, err := filepath.Rel(protoRoot, p)
		if err != nil {
			rel = p
		}
		f, err := parse.File(filepath.ToSlash(rel), src)
		if err != nil {
			log.Errorf("parsing %s: %v", rel, err)
			return nil, err
		}
		files = append(files, f)
	}

	tbl, err := lookup.Build(files)
	if err != nil {
		log.Errorf("building lookup table: %v", err)
		return nil, pkgerrors.WithStack(err)
	}
	cache.seedTable(tbl)

	if err := tbl.ResolveFieldTypes(); err != nil {
		log.Errorf("resolving field types: %v", err)
		return nil, pkgerrors.WithStack(err)
	}
	for _, f := range files {
		for _, m := range f.Messages {
			if err := validateMessageTree(m); err != nil {
				log.Errorf("validating %s: %v", f.Name, err)
				return nil, pkgerrors.WithStack(err)
			}
		}
	}

	written := make([][]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			out, err := generateOne(f, tbl, destRoot)
			if err != nil {
				return err
			}
			written[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, out := range written {
		all = append(all, out...)
	}
	cache.record(tbl)
	if err := cache.Save(); err != nil {
		return nil, err
	}
	log.Infof("wrote %d file(s) to %s", len(all), destRoot)
	return &Result{FilesWritten: all}, nil
}

func validateMessageTree(m *ast.Message) error {
	if err := lookup.ValidateReservedRanges(m); err != nil {
		return err
	}
	for _, nested := range m.Nested {
		if err := validateMessageTree(nested); err != nil {
			return err
		}
	}
	return nil
}

func findProtoFiles(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".proto") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// generateOne emits the model file and the two codec files for a single
// parsed .proto source, returning the paths it wrote. All three files share
// one Go package directory, named after the source's target package, since
// the binary and JSON codec methods attach directly to the model's struct
// type and so cannot live in a separate codec package the way spec.md's
// literal `<pkg>/codec/<Msg>BinaryCodec` naming suggests; see DESIGN.md for
// the file-layout decision.
func generateOne(f *ast.File, tbl *lookup.Table, destRoot string) ([]string, error) {
	pkg := f.TargetPackage
	if pkg == "" {
		parts := strings.Split(f.Pkg, ".")
		pkg = parts[len(parts)-1]
	}
	dir := filepath.Join(destRoot, pkg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pberrs.New(pberrs.IOFailure, "creating %q: %v", dir, err).Wrap(err)
	}
	base := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))

	model, err := genmodel.GenerateFile(f, tbl)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	binary, err := genbinary.GenerateFile(f, tbl)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	jsonCodec, err := genjson.GenerateFile(f, tbl)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}

	var written []string
	for _, entry := range []struct {
		name string
		gf   *gen.File
	}{
		{base + ".pbj.go", model},
		{base + "_binary.pbj.go", binary},
		{base + "_json.pbj.go", jsonCodec},
	} {
		path := filepath.Join(dir, entry.name)
		if err := writeGenFile(path, entry.gf); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeGenFile(path string, gf *gen.File) error {
	content, err := gf.Content()
	if err != nil {
		return pberrs.New(pberrs.SchemaViolation, "formatting %s: %v", path, err).Wrap(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return pberrs.New(pberrs.IOFailure, "writing %s: %v", path, err).Wrap(err)
	}
	return nil
}
