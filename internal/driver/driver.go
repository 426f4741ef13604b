package driver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"wlbind/internal/diag"
	"wlbind/internal/ir"
	"wlbind/internal/layout"
	"wlbind/internal/observ"
	"wlbind/internal/project"
	"wlbind/internal/project/dag"
	"wlbind/internal/registry"
	"wlbind/internal/resolve"
	"wlbind/internal/source"
	"wlbind/internal/trace"
	"wlbind/internal/wlxml"
)

// ErrAborted is returned by Compile when error diagnostics stopped the
// pipeline before the IR was complete. The result still carries the bag.
var ErrAborted = errors.New("compilation aborted")

// Options configure one Compile run.
type Options struct {
	// Root is the corpus directory on the filesystem given to Compile.
	Root string
	// Include filters document identities, see project.Discover.
	Include        []string
	ImportBase     string
	Naming         registry.Options
	Jobs           int
	MaxDiagnostics int
	EnableTimings  bool
	// Cache is consulted before parsing and filled after a clean run; nil
	// disables caching.
	Cache    *DiskCache
	Observer PhaseObserver
}

// Result is the outcome of Compile. Documents, Resolutions and Metas are
// index-aligned and in corpus order.
type Result struct {
	FileSet     *source.FileSet
	Bag         *diag.Bag
	Registry    *registry.Registry
	Documents   []*ir.Document
	Resolutions []*resolve.Result
	Metas       []project.DocumentMeta
	// EmitOrder lists document identities dependencies first.
	EmitOrder []string
	Timing    *observ.Report
	CacheHit  bool
}

// Document returns the compiled document with the given identity.
func (r *Result) Document(id string) (*ir.Document, *resolve.Result, bool) {
	for i, doc := range r.Documents {
		if doc.Path == id {
			return doc, r.Resolutions[i], true
		}
	}
	return nil, nil, false
}

type compiler struct {
	fsys   afero.Fs
	opts   Options
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
	res    *Result
}

// Compile runs the whole pipeline over the corpus below opts.Root:
// discovery, parsing, validation, registry construction, per-document
// resolution, layout and the import graph.
func Compile(ctx context.Context, fsys afero.Fs, opts Options) (*Result, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Naming == (registry.Options{}) {
		opts.Naming = registry.DefaultOptions()
	}

	c := &compiler{
		fsys:   fsys,
		opts:   opts,
		tracer: trace.FromContext(ctx),
		res: &Result{
			FileSet: source.NewFileSet(fsys),
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	c.res.FileSet.SetBaseDir(opts.Root)
	if opts.EnableTimings {
		c.timer = observ.NewTimer()
	}

	span := trace.Begin(c.tracer, trace.ScopeDriver, "compile", trace.ParentSpan(ctx))
	span.WithExtra("root", opts.Root)
	c.parent = span.ID()
	ctx = trace.WithSpan(ctx, span)

	err := c.run(ctx)

	if c.timer != nil {
		report := c.timer.Report()
		c.res.Timing = &report
		appendTimingDiagnostic(c.res.Bag, timingPayload{
			Root:      opts.Root,
			Documents: len(c.res.Documents),
			CacheHit:  c.res.CacheHit,
			TotalMS:   report.TotalMS,
			Phases:    report.Phases,
		})
	}
	span.End(fmt.Sprintf("documents=%d diagnostics=%d", len(c.res.Documents), c.res.Bag.Len()))
	return c.res, err
}

func (c *compiler) run(ctx context.Context) error {
	var ids []string
	if err := c.phase("discover", func() (int, error) {
		var err error
		ids, err = project.Discover(c.fsys, c.opts.Root, c.opts.Include)
		return len(ids), err
	}); err != nil {
		return fmt.Errorf("discover %s: %w", c.opts.Root, err)
	}
	if len(ids) == 0 {
		diag.ReportError(c.reporter(), diag.ProjNoDocuments, source.Span{},
			fmt.Sprintf("no protocol documents found under %q", c.opts.Root)).Emit()
		return ErrAborted
	}

	var files []source.FileID
	_ = c.phase("load", func() (int, error) {
		files = c.load(ids)
		return len(files), nil
	})
	if c.res.Bag.HasErrors() {
		return ErrAborted
	}

	key := c.cacheKey()
	if c.fromCache(key) {
		return c.phase("registry", func() (int, error) {
			return len(c.res.Documents), c.buildRegistry()
		})
	}

	if err := c.phase("parse", func() (int, error) {
		return len(ids), c.parse(ctx, ids, files)
	}); err != nil {
		return err
	}
	if c.res.Bag.HasErrors() {
		return ErrAborted
	}

	if err := c.phase("registry", func() (int, error) {
		return len(c.res.Documents), c.buildRegistry()
	}); err != nil {
		return err
	}

	if err := c.phase("resolve", func() (int, error) {
		return len(c.res.Documents), c.resolve(ctx)
	}); err != nil {
		return err
	}
	if c.res.Bag.HasErrors() {
		return ErrAborted
	}

	if err := c.phase("layout", func() (int, error) {
		return len(c.res.Documents), c.layout()
	}); err != nil {
		return err
	}

	_ = c.phase("graph", func() (int, error) {
		c.graph()
		return len(c.res.Metas), nil
	})

	c.store(key)
	return nil
}

// phase wraps one pipeline step with a trace span, a timer entry and the
// observer callbacks. fn returns the number of documents it handled.
func (c *compiler) phase(name string, fn func() (int, error)) error {
	if c.opts.Observer != nil {
		c.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	span := trace.Begin(c.tracer, trace.ScopePass, name, c.parent)
	idx := c.timer.Begin(name)
	start := time.Now()

	n, err := fn()

	note := fmt.Sprintf("%d documents", n)
	c.timer.End(idx, note)
	span.End(note)
	if c.opts.Observer != nil {
		c.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Documents: n})
	}
	return err
}

func (c *compiler) reporter() diag.Reporter {
	return diag.BagReporter{Bag: c.res.Bag}
}

func (c *compiler) load(ids []string) []source.FileID {
	files := make([]source.FileID, 0, len(ids))
	for _, id := range ids {
		fileID, err := c.res.FileSet.Load(path.Join(c.opts.Root, id))
		if err != nil {
			diag.ReportError(c.reporter(), diag.IOLoadFileError, source.Span{},
				fmt.Sprintf("failed to load %q: %v", id, err)).Emit()
			continue
		}
		files = append(files, fileID)
	}
	return files
}

// parse decodes and validates every document in parallel.
func (c *compiler) parse(ctx context.Context, ids []string, files []source.FileID) error {
	docs := make([]*ir.Document, len(ids))
	bags, err := forEachDocument(ctx, len(ids), c.opts.Jobs, c.opts.MaxDiagnostics, func(ctx context.Context, i int, bag *diag.Bag) {
		span := trace.Begin(c.tracer, trace.ScopeDocument, "parse", trace.ParentSpan(ctx))
		span.WithExtra("document", ids[i])
		defer span.End("")

		// парсер и валидатор могут сообщить одно и то же
		r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
		doc := wlxml.Parse(c.res.FileSet.Get(files[i]), r)
		if doc == nil {
			return
		}
		doc.Path = ids[i]
		doc.ImportPath = project.ImportPathFor(c.opts.ImportBase, ids[i])
		ir.Validate(doc, r)
		docs[i] = doc
	})
	mergeBags(c.res.Bag, bags)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc != nil {
			c.res.Documents = append(c.res.Documents, doc)
		}
	}
	return nil
}

func (c *compiler) buildRegistry() error {
	reg, err := registry.Build(c.res.Documents, c.opts.Naming)
	switch {
	case err == nil:
		c.res.Registry = reg
		return nil
	case errors.Is(err, registry.ErrAliasExhausted):
		diag.ReportError(c.reporter(), diag.ProjAliasExhausted, source.Span{}, err.Error()).Emit()
	case errors.Is(err, registry.ErrDuplicateDocument):
		diag.ReportError(c.reporter(), diag.ProjDuplicateDocument, source.Span{}, err.Error()).Emit()
	default:
		return fmt.Errorf("registry: %w", err)
	}
	return ErrAborted
}

// resolve runs the resolution pass of every document against the frozen
// registry. Workers write only to their own result slot and bag.
func (c *compiler) resolve(ctx context.Context) error {
	docs := c.res.Documents
	results := make([]*resolve.Result, len(docs))
	bags, err := forEachDocument(ctx, len(docs), c.opts.Jobs, c.opts.MaxDiagnostics, func(ctx context.Context, i int, bag *diag.Bag) {
		span := trace.Begin(c.tracer, trace.ScopeDocument, "resolve", trace.ParentSpan(ctx))
		span.WithExtra("document", docs[i].Path)
		start := time.Now()

		res, ok := resolve.Document(c.res.Registry, docs[i], diag.BagReporter{Bag: bag})
		results[i] = res

		c.timer.Observe("resolve.document", time.Since(start))
		span.End(fmt.Sprintf("ok=%t imports=%d", ok, len(res.Imports)))
	})
	mergeBags(c.res.Bag, bags)
	if err != nil {
		return err
	}
	c.res.Resolutions = results
	return nil
}

func (c *compiler) layout() error {
	for _, doc := range c.res.Documents {
		if err := layout.Compute(doc.Protocol); err != nil {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
	}
	return nil
}

// graph builds the import graph from the resolved edges, warns on cycles,
// fills the aggregate document hashes and computes the emission order.
func (c *compiler) graph() {
	docs := c.res.Documents
	metas := make([]project.DocumentMeta, len(docs))
	for i, doc := range docs {
		meta := project.DocumentMeta{
			Path:        doc.Path,
			ImportPath:  doc.ImportPath,
			File:        doc.File,
			ContentHash: c.res.FileSet.Get(doc.File).Hash,
		}
		if doc.Protocol != nil {
			meta.Protocol = doc.Protocol.Name
			meta.Span = doc.Protocol.Span
		}
		for _, edge := range c.res.Resolutions[i].Imports {
			meta.Imports = append(meta.Imports, project.ImportMeta{Path: edge.Document, Alias: edge.Alias})
		}
		metas[i] = meta
	}

	idx := dag.BuildIndex(metas)
	nodes := make([]dag.DocNode, len(metas))
	for i := range metas {
		nodes[i] = dag.DocNode{Meta: metas[i], Reporter: c.reporter()}
	}
	g, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, slots, *topo)
	dag.ComputeHashes(slots, g, topo)

	for i := range metas {
		metas[i].DocHash = slots[int(idx.NameToID[metas[i].Path])].Meta.DocHash
	}
	c.res.Metas = metas
	for _, id := range topo.EmitOrder() {
		if slots[int(id)].Present {
			c.res.EmitOrder = append(c.res.EmitOrder, idx.IDToName[int(id)])
		}
	}
}

// cacheKey combines the corpus digest with everything in Options that
// changes the compiled IR.
func (c *compiler) cacheKey() project.Digest {
	h := sha256.New()
	n := c.opts.Naming
	fmt.Fprintf(h, "schema=%d\x00base=%s\x00prefix=%s\x00alias=%s\x00proto=%s\x00include=%s",
		diskCacheSchemaVersion, c.opts.ImportBase, n.RootPrefix, n.RootAlias, n.RootProtocol,
		strings.Join(c.opts.Include, ","))
	var fingerprint project.Digest
	copy(fingerprint[:], h.Sum(nil))
	return project.Combine(project.Digest(c.res.FileSet.Digest()), fingerprint)
}

func (c *compiler) fromCache(key project.Digest) bool {
	if c.opts.Cache == nil {
		return false
	}
	var payload DiskPayload
	ok, err := c.opts.Cache.Get(key, &payload)
	if err != nil || !ok {
		return false
	}
	c.res.Documents = payload.Documents
	c.res.Resolutions = payload.Resolutions
	c.res.Metas = payload.Metas
	c.res.EmitOrder = payload.EmitOrder
	for _, d := range payload.Diagnostics {
		c.res.Bag.Add(d)
	}
	c.res.CacheHit = true
	trace.Point(c.tracer, trace.ScopePass, "cache.hit", fmt.Sprintf("documents=%d", len(payload.Documents)), c.parent)
	return true
}

func (c *compiler) store(key project.Digest) {
	if c.opts.Cache == nil || c.res.Bag.HasErrors() {
		return
	}
	payload := &DiskPayload{
		Documents:   c.res.Documents,
		Resolutions: c.res.Resolutions,
		Metas:       c.res.Metas,
		EmitOrder:   c.res.EmitOrder,
		Diagnostics: c.res.Bag.Items(),
	}
	if err := c.opts.Cache.Put(key, payload); err != nil {
		// кеш необязателен: сбой записи не ломает компиляцию
		trace.Point(c.tracer, trace.ScopePass, "cache.store_failed", err.Error(), c.parent)
	}
}
