// Package search recursively locates TPX3 captures under a URI (local path
// or object store), via TileDB's VFS so the same code trawls either.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively matches pattern against the basename of every file
// under uri, e.g. ("*.tpx3", "run0042_serval32.tpx3").
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) []string {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		panic(err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			panic(err)
		}

		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items = trawl(vfs, pattern, dir, items)
	}

	return items
}

// FindTPX3 recursively searches for *.tpx3 captures under uri. configURI, if
// non-empty, points at a TileDB config file (needed for object-store URIs
// with access-permission constraints).
func FindTPX3(uri string, configURI string) []string {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			panic(err)
		}
	} else {
		config, err = tiledb.LoadConfig(configURI)
		if err != nil {
			panic(err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		panic(err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		panic(err)
	}
	defer vfs.Free()

	items := make([]string, 0)
	return trawl(vfs, "*.tpx3", uri, items)
}
