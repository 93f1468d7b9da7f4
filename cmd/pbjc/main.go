// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pbjc compiles a tree of proto3 sources into immutable Go model
// types plus binary and JSON codecs, per spec.md §6's driver contract.
package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/hashgraph/pbj-go/compiler"
)

func printFatal(msg string, args ...interface{}) {
	printErr(msg, args...)
	os.Exit(1)
}

func printErr(msg string, args ...interface{}) {
	os.Stderr.WriteString(fmt.Sprintf(msg, args...) + "\n")
}

func setupLogging(level string) {
	backend := logging.NewLogBackend(os.Stderr, "pbjc ", 0)
	formatter := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{module} ▶ %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.NOTICE
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
}

func generateCommand(c *cli.Context) error {
	protoRoot := c.String("proto_root")
	destRoot := c.String("dest_root")
	if protoRoot == "" || destRoot == "" {
		return cli.NewExitError("both --proto_root and --dest_root are required", 2)
	}

	cache, err := compiler.LoadCache(c.String("lookup_cache"))
	if err != nil {
		printFatal("loading lookup cache: %v", err)
	}

	result, err := compiler.Run(protoRoot, destRoot, cache)
	if err != nil {
		printFatal("%v", err)
	}
	for _, path := range result.FilesWritten {
		printErr("wrote %s", path)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "pbjc"
	app.Usage = "compile proto3 sources into Go model types and binary/JSON codecs"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log_level", Value: "NOTICE", Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, or DEBUG"},
	}
	app.Before = func(c *cli.Context) error {
		setupLogging(c.String("log_level"))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "generate",
			Usage: "pbjc generate --proto_root <dir> --dest_root <dir> [--lookup_cache <file>]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "proto_root", Usage: "root directory of .proto sources"},
				cli.StringFlag{Name: "dest_root", Usage: "destination source root to write generated Go into"},
				cli.StringFlag{Name: "lookup_cache", Usage: "optional JSON file of message/enum names known from prior builds"},
			},
			Action: generateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		printFatal("%v", err)
	}
}
