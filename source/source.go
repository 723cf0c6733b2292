// Package source loads an Aidoku source archive (a small zip-like
// "Payload" bundling a manifest, default settings, and a main.wasm
// guest module) and exposes its manga listing, chapter listing, page
// listing, and image request operations as ordinary Go methods.
package source

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/httppipeline"
	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/metrics"
	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
	"github.com/hanatsumi/rakuyomi/utils"
	"github.com/hanatsumi/rakuyomi/value"
	"github.com/hanatsumi/rakuyomi/wasmhost"
)

// Source is one loaded .aix archive: a compiled WASM module plus the
// host environment it was instantiated against. Every guest call is
// serialized through mu, since a single wazero module instance is not
// safe for concurrent invocation, and offloaded onto a goroutine so a
// caller's context cancellation can abandon the wait without tearing
// down the module mid-call.
type Source struct {
	Manifest model.SourceManifest

	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
	host    *wasmhost.Host
}

type manifestFile struct {
	Info struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Version string `json:"version"`
		Lang    string `json:"lang"`
	} `json:"info"`
}

// Load reads an archive (the .aix zip containing Payload/source.json,
// Payload/settings.json, and Payload/main.wasm) and instantiates its
// guest module against a fresh wasmhost.Host.
func Load(ctx context.Context, archivePath string, settings wasmhost.Settings) (*Source, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, rerr.New(rerr.NotFound, fmt.Errorf("opening source archive: %w", err))
	}
	defer reader.Close()

	var manifestBytes, wasmBytes []byte
	for _, f := range reader.File {
		switch f.Name {
		case "Payload/source.json":
			manifestBytes, err = readZipFile(f)
		case "Payload/main.wasm":
			wasmBytes, err = readZipFile(f)
		}
		if err != nil {
			return nil, rerr.New(rerr.ProtocolViolation, fmt.Errorf("reading %s: %w", f.Name, err))
		}
	}
	if manifestBytes == nil || wasmBytes == nil {
		return nil, rerr.Newf(rerr.ProtocolViolation, "archive %s is missing source.json or main.wasm", archivePath)
	}

	var manifest manifestFile
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, rerr.New(rerr.ProtocolViolation, fmt.Errorf("parsing source.json: %w", err))
	}

	runtime := wazero.NewRuntime(ctx)

	host := wasmhost.New(manifest.Info.ID, settings)
	if err := host.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, rerr.New(rerr.Other, fmt.Errorf("instantiating host modules: %w", err))
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, rerr.New(rerr.ProtocolViolation, fmt.Errorf("compiling guest module: %w", err))
	}

	module, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		runtime.Close(ctx)
		return nil, rerr.New(rerr.GuestTrap, fmt.Errorf("instantiating guest module: %w", err))
	}

	return &Source{
		Manifest: model.SourceManifest{
			Id:      manifest.Info.ID,
			Name:    manifest.Info.Name,
			Version: manifest.Info.Version,
			Lang:    manifest.Info.Lang,
		},
		runtime: runtime,
		module:  module,
		host:    host,
	}, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Source) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// call invokes a guest-exported function by name, serialized against
// every other call into this Source, and offloaded onto a goroutine so
// ctx cancellation can return to the caller immediately even though
// wazero's Call itself does not observe context cancellation once a
// guest function has started running CPU-bound guest code.
func (s *Source) call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	s.mu.Lock()
	unlock := true
	defer func() {
		if unlock {
			s.mu.Unlock()
		}
	}()

	defer utils.LogDuration("source."+name, time.Now(), s.Manifest.Id)

	metrics.SourceCallsTotal.WithLabelValues(s.Manifest.Id, name).Inc()

	fn := s.module.ExportedFunction(name)
	if fn == nil {
		return nil, rerr.Newf(rerr.ProtocolViolation, "source %s does not export %s", s.Manifest.Id, name)
	}

	type result struct {
		values []uint64
		err    error
	}
	done := make(chan result, 1)
	go func() {
		values, err := fn.Call(ctx, args...)
		done <- result{values, err}
	}()

	select {
	case <-ctx.Done():
		// The guest keeps running until fn.Call returns; mu stays held
		// until then so no other call enters the module alongside it.
		unlock = false
		go func() {
			<-done
			s.mu.Unlock()
		}()
		return nil, rerr.New(rerr.Cancelled, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, rerr.New(rerr.GuestTrap, r.err)
		}
		return r.values, nil
	}
}

func (s *Source) storeFilters(filters []model.SearchFilter) int32 {
	elements := make([]value.Value, len(filters))
	for i, f := range filters {
		elements[i] = value.Object(value.FilterObject(value.Filter{
			Type:  int32(f.Type),
			Name:  f.Name,
			Value: f.Value,
		}))
	}
	return int32(s.host.Store.Store(value.Array(elements)))
}

// ListMangas runs get_manga_list, the guest function backing both
// browse and search (a Title filter in filters is how a search query
// is expressed, matching the Aidoku filter convention).
func (s *Source) ListMangas(ctx context.Context, filters []model.SearchFilter, page int32) (value.MangaPageResult, error) {
	filterHandle := s.storeFilters(filters)
	defer s.host.Store.Remove(value.Handle(filterHandle))

	results, err := s.call(ctx, "get_manga_list", uint64(uint32(filterHandle)), uint64(uint32(page)))
	if err != nil {
		return value.MangaPageResult{}, err
	}
	if len(results) == 0 {
		return value.MangaPageResult{}, rerr.Newf(rerr.ProtocolViolation, "get_manga_list returned no value")
	}

	handle := int32(results[0])
	if handle == memory.Absent {
		return value.MangaPageResult{}, rerr.Newf(rerr.ProtocolViolation, "get_manga_list reported failure")
	}
	v, ok := s.host.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindObject || v.Object.Kind != value.ObjectMangaPageResult {
		return value.MangaPageResult{}, rerr.Newf(rerr.ProtocolViolation, "get_manga_list returned an unexpected value shape")
	}
	return *v.Object.MangaPageResult, nil
}

// ListChapters runs get_chapter_list for a given manga id. Aidoku only
// ever places the id field of the Manga object into the argument it
// hands the guest, so a single-key map is all that's built here.
func (s *Source) ListChapters(ctx context.Context, mangaID string) ([]value.Chapter, error) {
	popContext := s.host.PushMangaContext(ctx, mangaID)
	defer popContext()

	mangaHandle := s.host.Store.Store(value.Object(value.ValueMapObject(map[string]value.Value{
		"id": value.String(mangaID),
	})))
	defer s.host.Store.Remove(mangaHandle)

	results, err := s.call(ctx, "get_chapter_list", uint64(uint32(mangaHandle)))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || int32(results[0]) == memory.Absent {
		return nil, rerr.Newf(rerr.ProtocolViolation, "get_chapter_list reported failure")
	}

	v, ok := s.host.Store.Get(value.Handle(int32(results[0])))
	if !ok || v.Kind != value.KindArray {
		return nil, rerr.Newf(rerr.ProtocolViolation, "get_chapter_list returned an unexpected value shape")
	}

	chapters := make([]value.Chapter, 0, len(v.Array))
	for _, e := range v.Array {
		if e.Kind == value.KindObject && e.Object.Kind == value.ObjectChapter && e.Object.Chapter != nil {
			chapters = append(chapters, *e.Object.Chapter)
		}
	}
	return chapters, nil
}

// ListPages runs get_page_list for a given chapter id. The guest
// receives both the chapter id and its manga's id, since Aidoku's
// Chapter object carries a mangaId field pages may need.
func (s *Source) ListPages(ctx context.Context, mangaID, chapterID string) ([]value.Page, error) {
	popContext := s.host.PushChapterContext(ctx, chapterID)
	defer popContext()

	chapterHandle := s.host.Store.Store(value.Object(value.ValueMapObject(map[string]value.Value{
		"id":      value.String(chapterID),
		"mangaId": value.String(mangaID),
	})))
	defer s.host.Store.Remove(chapterHandle)

	results, err := s.call(ctx, "get_page_list", uint64(uint32(chapterHandle)))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || int32(results[0]) == memory.Absent {
		return nil, rerr.Newf(rerr.ProtocolViolation, "get_page_list reported failure")
	}

	v, ok := s.host.Store.Get(value.Handle(int32(results[0])))
	if !ok || v.Kind != value.KindArray {
		return nil, rerr.Newf(rerr.ProtocolViolation, "get_page_list returned an unexpected value shape")
	}

	pages := make([]value.Page, 0, len(v.Array))
	for _, e := range v.Array {
		if e.Kind == value.KindObject && e.Object.Kind == value.ObjectPage && e.Object.Page != nil {
			pages = append(pages, *e.Object.Page)
		}
	}
	return pages, nil
}

// GetImageRequest lets a source customize the HTTP request used to fetch
// a page's image (additional headers, a different URL) by running
// modify_image_request if the guest exports it; sources that don't
// customize anything simply don't export the function, and the caller
// falls back to an unmodified GET.
func (s *Source) GetImageRequest(ctx context.Context, imageURL string) (*httppipeline.Request, error) {
	req := httppipeline.NewRequest("GET", s.host.HTTPClient)
	if err := req.SetURL(imageURL); err != nil {
		return nil, err
	}

	if s.module.ExportedFunction("modify_image_request") == nil {
		return req, nil
	}

	urlHandle := s.host.Store.Store(value.String(imageURL))
	defer s.host.Store.Remove(urlHandle)

	requestHandle := s.host.StoreRequest(req)
	if _, err := s.call(ctx, "modify_image_request", uint64(uint32(requestHandle)), uint64(uint32(urlHandle))); err != nil {
		return nil, err
	}
	return req, nil
}
