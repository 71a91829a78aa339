package main

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soocke/corrmatch"
	"github.com/soocke/corrmatch/internal/imageio"
)

// templateCache compiles templates on demand and caches the result,
// keyed by the source path and its modification time, so repeated
// requests against the same template file (the -batch
// newline-delimited-JSON case) skip re-decoding and re-compiling the
// pyramid and rotation bank. Grounded on the teacher's ncc.go
// tmplCacheByDim map
// (keyed by dimension there, by path+mtime here), rebuilt on
// hashicorp/golang-lru/v2 for bounded memory instead of an unbounded
// map.
type templateCache struct {
	cache *lru.Cache[string, *corrmatch.CompiledTemplate]
}

func newTemplateCache(size int) (*templateCache, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[string, *corrmatch.CompiledTemplate](size)
	if err != nil {
		return nil, fmt.Errorf("creating template cache: %w", err)
	}
	return &templateCache{cache: c}, nil
}

// Compiled returns the compiled template for path, compiling and
// caching it on first use.
func (tc *templateCache) Compiled(path string, cfg corrmatch.CompileConfig, rotation bool) (*corrmatch.CompiledTemplate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	key := fmt.Sprintf("%s@%d:%v:%+v", path, info.ModTime().UnixNano(), rotation, cfg)

	if ct, ok := tc.cache.Get(key); ok {
		return ct, nil
	}

	view, err := imageio.DecodeGrayFile(path)
	if err != nil {
		return nil, err
	}
	tpl, err := corrmatch.NewTemplate(view.Width, view.Height, view.Pix)
	if err != nil {
		return nil, err
	}

	var ct *corrmatch.CompiledTemplate
	if rotation {
		ct, err = corrmatch.Compile(tpl, cfg)
	} else {
		ct, err = corrmatch.CompileUnrotated(tpl, cfg)
	}
	if err != nil {
		return nil, err
	}

	tc.cache.Add(key, ct)
	return ct, nil
}
