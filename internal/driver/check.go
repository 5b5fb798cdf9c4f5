package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"husk/internal/ast"
	"husk/internal/builtin"
	"husk/internal/contract"
	"husk/internal/decl"
	"husk/internal/diag"
	"husk/internal/entity"
	"husk/internal/hir"
	"husk/internal/lexer"
	"husk/internal/observ"
	"husk/internal/parser"
	"husk/internal/project"
	"husk/internal/query"
	"husk/internal/sema"
	"husk/internal/source"
	"husk/internal/symbols"
	"husk/internal/term"
	"husk/internal/trace"
)

// Options configures Check.
type Options struct {
	// Paths are files or directories; directories contribute every .hk file.
	Paths []string
	// BaseDir is used for relative path display.
	BaseDir        string
	MaxDiagnostics int
	// Jobs bounds the number of regions checked at once; 0 uses GOMAXPROCS.
	Jobs int
	// Lower builds HIR for every region that checked cleanly.
	Lower bool
	// Cache, when set, serves diagnostics of unchanged crates. It is
	// bypassed when Lower is set.
	Cache       *DiskCache
	ToolVersion string
	Progress    ProgressSink
}

// RegionOutcome is everything Check computed for one region.
type RegionOutcome struct {
	Key      sema.RegionKey
	Sema     *sema.RegionResult
	Contract *contract.Result
	HIR      *hir.Region
}

// Result is the outcome of Check. DB, Contracts and Regions are nil when
// diagnostics came from the cache.
type Result struct {
	FileSet   *source.FileSet
	Files     []project.SourceFile
	Bag       *diag.Bag
	DB        *decl.DB
	Contracts *contract.Engine
	Regions   []RegionOutcome
	Modules   []*hir.Module
	Timings   observ.Report
	Cached    bool
}

const defaultMaxDiagnostics = 100

// Check runs the front end over opts.Paths: parse, build the crate, then
// type, contract and optionally lower every region. Diagnostics hold
// original errors only. The returned error is reserved for failures of the
// run itself such as unreadable arguments or cancellation.
func Check(ctx context.Context, opts Options) (*Result, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "check")
	defer span.End("")

	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	if opts.Progress == nil {
		opts.Progress = nopSink{}
	}
	timer := observ.NewTimer()
	files, err := project.Sources(opts.Paths)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	res := &Result{FileSet: fs, Files: files, Bag: diag.NewBag(opts.MaxDiagnostics)}
	rep := &diag.BagReporter{Bag: res.Bag}

	ids, err := load(fs, files, opts.Progress)
	if err != nil {
		return nil, err
	}

	var key project.Digest
	if opts.Cache != nil && !opts.Lower {
		key = crateDigest(fs, ids, opts.ToolVersion)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache_error", err.Error(), span.ID())
		}
		if hit {
			payload.restore(res.Bag, ids)
			res.Cached = true
			for _, f := range files {
				opts.Progress.OnEvent(Event{File: f.Path, Stage: StageInfer, Status: StatusDone})
			}
			return res, nil
		}
	}

	phase := func(name string, stage Stage, run func(context.Context) error) error {
		pctx, ps := trace.BeginCtx(ctx, trace.ScopePass, name)
		idx := timer.Begin(name)
		start := time.Now()
		opts.Progress.OnEvent(Event{Stage: stage, Status: StatusWorking})
		err := run(pctx)
		timer.End(idx, "")
		status := StatusDone
		if err != nil {
			status = StatusError
		}
		opts.Progress.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
		ps.End(string(status))
		return err
	}

	var (
		builder *ast.Builder
		parsed  []ast.FileID
		reg     *entity.Registry
		bi      *builtin.Registry
		terms   *term.Table
	)
	strs := source.NewInterner()
	err = phase("parse", StageParse, func(context.Context) error {
		builder = ast.NewBuilder(ast.Hints{}, strs)
		reg = entity.NewRegistry(strs)
		var err error
		if bi, err = builtin.Install(reg, fs, builder, rep); err != nil {
			return fmt.Errorf("install builtins: %w", err)
		}
		terms = term.NewTable(reg, bi.Prims())
		parsed = parse(fs, ids, files, builder, rep, opts.Progress)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		crate *symbols.Crate
		keys  []sema.RegionKey
	)
	_ = phase("decl", StageDecl, func(context.Context) error {
		crate = symbols.BuildCrate(builder, parsed, reg, bi)
		res.DB = decl.NewDB(crate, terms)
		keys = sema.Regions(res.DB)
		return nil
	})
	eng := sema.NewEngine(res.DB, trace.FromContext(ctx))
	res.Contracts = contract.NewEngine(eng)

	res.Regions = make([]RegionOutcome, len(keys))
	err = phase("infer", StageInfer, func(pctx context.Context) error {
		return forEachRegion(pctx, opts.Jobs, keys, func(i int, key sema.RegionKey) {
			res.Regions[i] = RegionOutcome{Key: key, Sema: eng.Infer(key)}
		})
	})
	if err != nil {
		return nil, err
	}
	err = phase("contract", StageContract, func(pctx context.Context) error {
		return forEachRegion(pctx, opts.Jobs, keys, func(i int, key sema.RegionKey) {
			res.Regions[i].Contract = res.Contracts.Of(key)
		})
	})
	if err != nil {
		return nil, err
	}
	if opts.Lower {
		err = phase("lower", StageLower, func(context.Context) error {
			res.Modules = lower(res.DB, crate, res.Regions)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	gather(res)
	for _, f := range files {
		status := StatusDone
		if fileHasErrors(res.Bag, fs, f.Path) {
			status = StatusError
		}
		opts.Progress.OnEvent(Event{File: f.Path, Stage: StageInfer, Status: status})
	}
	res.Timings = timer.Report()

	if opts.Cache != nil && !opts.Lower {
		paths := make([]string, len(files))
		index := make(map[source.FileID]int, len(ids))
		for i, f := range files {
			paths[i] = f.Path
			index[ids[i]] = i
		}
		if err := opts.Cache.Put(key, toPayload(res.Bag, paths, index)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache_error", err.Error(), span.ID())
		}
	}
	return res, nil
}

func load(fs *source.FileSet, files []project.SourceFile, progress ProgressSink) ([]source.FileID, error) {
	ids := make([]source.FileID, len(files))
	for i, f := range files {
		progress.OnEvent(Event{File: f.Path, Stage: StageParse, Status: StatusQueued})
		id, err := fs.Load(f.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f.Path, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// parse runs sequentially: every file writes into the shared AST builder.
func parse(fs *source.FileSet, ids []source.FileID, files []project.SourceFile, b *ast.Builder, rep diag.Reporter, progress ProgressSink) []ast.FileID {
	out := make([]ast.FileID, len(ids))
	for i, id := range ids {
		progress.OnEvent(Event{File: files[i].Path, Stage: StageParse, Status: StatusWorking})
		lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
		out[i] = parser.ParseFile(lx, b, parser.Options{Reporter: rep, Module: files[i].Module}).File
	}
	return out
}

// forEachRegion runs fn for every key with at most jobs goroutines. Memo
// tables are shared, so a region reached twice is still computed once.
func forEachRegion(ctx context.Context, jobs int, keys []sema.RegionKey, fn func(int, sema.RegionKey)) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(keys))))
	for i, key := range keys {
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					var (
						ie *diag.InternalError
						ce *query.CycleError
					)
					if e, ok := r.(error); ok && (errors.As(e, &ie) || errors.As(e, &ce)) {
						err = fmt.Errorf("region %d: %w", i, e)
						return
					}
					panic(r)
				}
			}()
			fn(i, key)
			return nil
		})
	}
	return g.Wait()
}

// lower builds one HIR module per source module, regions sorted by key.
// Regions that did not check cleanly are left out.
func lower(db *decl.DB, crate *symbols.Crate, regions []RegionOutcome) []*hir.Module {
	reg := db.Reg()
	byPath := make(map[entity.Path]*hir.Module, len(crate.Modules))
	mods := make([]*hir.Module, 0, len(crate.Modules))
	for _, m := range crate.Modules {
		hm := hir.NewModule(reg.Strings().MustLookup(m.Name), m.Path)
		byPath[m.Path] = hm
		mods = append(mods, hm)
	}
	for i := range regions {
		r := &regions[i]
		lowered, err := hir.Lower(db, r.Sema, r.Contract)
		if err != nil {
			continue
		}
		r.HIR = lowered
		if hm, ok := byPath[reg.Module(r.Key.Path)]; ok {
			hm.Add(lowered)
		}
	}
	for _, m := range mods {
		m.Sort()
	}
	return mods
}

// gather moves original errors of every phase into the bag.
func gather(res *Result) {
	add := func(errs []*diag.Error) {
		for _, e := range errs {
			if diag.IsOriginal(e) {
				res.Bag.Add(e.Diagnostic())
			}
		}
	}
	add(res.DB.Errors())
	for _, r := range res.Regions {
		if r.Sema != nil {
			add(r.Sema.Originals())
		}
		if r.Contract != nil {
			add(r.Contract.Errors)
		}
	}
	res.Bag.Sort()
	res.Bag.Dedup()
}

func fileHasErrors(bag *diag.Bag, fs *source.FileSet, path string) bool {
	id, ok := fs.GetLatest(path)
	if !ok {
		return false
	}
	return slices.ContainsFunc(bag.Items(), func(d diag.Diagnostic) bool {
		return d.Primary.File == id && d.Severity == diag.SevError
	})
}
