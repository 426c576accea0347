package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/common"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/metrics"
	"mixin-ap/internal/mixin"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/targets"
	"mixin-ap/internal/validation"
)

// Version is reported in the note printed when an environment starts.
var Version = "0.1.0"

// DefaultHandleCacheSize bounds the type handle cache when Config leaves it
// unset.
const DefaultHandleCacheSize = 1024

var tracer = otel.Tracer("mixin-ap/processor")

// Config configures an Environment. Only Index is usually set; everything
// else has a default.
type Config struct {
	// Options are the invocation options.
	Options map[string]string
	// SourceRoots are searched for the mixin.properties fallback.
	SourceRoots []string
	// Index is the front end's view of every visible type.
	Index *analyze.Index
	// Messager receives diagnostics, logged through Logger when nil.
	Messager diagnostic.Messager
	// Store persists target associations, a FileStore in the temp
	// directory when nil.
	Store targets.Store
	// Properties is the process-wide property table shared by environments
	// of the same build. A private table is used when nil.
	Properties *targets.Properties
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// HandleCacheSize bounds the type handle cache.
	HandleCacheSize int
	// SuppressNotes drops NOTE diagnostics, for compilers that surface them
	// as warnings.
	SuppressNotes bool
	// Schemes overrides the obfuscation schemes.
	Schemes []obf.Scheme
}

// Environment is the processing environment of one invocation.
type Environment struct {
	opts          *Options
	tokens        *tokenCache
	index         *analyze.Index
	handles       *lru.Cache[string, *analyze.TypeHandle]
	messager      diagnostic.Messager
	suppressNotes bool
	logger        *slog.Logger
	metrics       *metrics.Metrics

	obf     *obf.Manager
	targets *targets.Map
	mixins  *mixin.Registry
}

var (
	_ mixin.Host          = (*Environment)(nil)
	_ validation.Services = (*Environment)(nil)
)

// NewEnvironment builds an environment: it opens the target session, reads
// the dependency targets file, reports the processor version and prepares
// the token cache. Problems with the session or the imports are reported as
// warnings; only an invalid configuration is an error.
func NewEnvironment(cfg Config) (*Environment, error) {
	size := cfg.HandleCacheSize
	if size == 0 {
		size = DefaultHandleCacheSize
	}

	handles, err := lru.New[string, *analyze.TypeHandle](size)
	if err != nil {
		return nil, fmt.Errorf("type handle cache: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	messager := cfg.Messager
	if messager == nil {
		messager = diagnostic.LogMessager{Logger: logger}
	}

	if cfg.Metrics != nil {
		messager = cfg.Metrics.Messager(messager)
	}

	index := cfg.Index
	if index == nil {
		index = analyze.NewIndex()
	}

	e := &Environment{
		opts:          NewOptions(cfg.Options, cfg.SourceRoots...),
		index:         index,
		handles:       handles,
		messager:      messager,
		suppressNotes: cfg.SuppressNotes,
		logger:        logger,
		metrics:       cfg.Metrics,
	}

	e.targets = e.initTargetMap(cfg.Store, cfg.Properties)
	e.obf = obf.NewManager(e, e, cfg.Schemes...)

	e.PrintMessage(diagnostic.Diagnostic{
		Severity: diagnostic.SeverityNote,
		Code:     diagnostic.CodeProcessorVersion,
		Message:  "Mixin Annotation Processor v" + Version,
	})

	opts := []mixin.Option{mixin.WithValidators(validation.Defaults(e)...)}
	if cfg.Metrics != nil {
		opts = append(opts, mixin.WithObserver(cfg.Metrics))
	}

	e.mixins = mixin.NewRegistry(e, e.obf, e.targets, opts...)
	e.tokens = newTokenCache(e.Option(OptionTokens), e.Option)

	return e, nil
}

func (e *Environment) initTargetMap(store targets.Store, props *targets.Properties) *targets.Map {
	if store == nil {
		store = targets.FileStore{}
	}

	tmap, err := targets.Create("", store, props)
	if err != nil {
		e.warn(diagnostic.CodeSessionUnreadable, fmt.Sprintf("Could not load target session %s: %v", tmap.ID(), err))
	}

	if path := e.Option(OptionDependencyTargetsFile); path != "" {
		if err := tmap.ReadImportsFile(path); err != nil {
			e.logger.Debug("imports file unreadable", "path", path, "error", err)
			e.warn(diagnostic.CodeImportUnreadable, "Could not read from specified imports file: "+path)
		}
	}

	return tmap
}

// PrintMessage delivers d to the configured messager.
func (e *Environment) PrintMessage(d diagnostic.Diagnostic) {
	if d.Severity == diagnostic.SeverityNote && e.suppressNotes {
		return
	}

	e.messager.PrintMessage(d)
}

func (e *Environment) warn(code, msg string) {
	e.PrintMessage(diagnostic.Diagnostic{Severity: diagnostic.SeverityWarning, Code: code, Message: msg})
}

// TypeHandle resolves name ("a.b.C" or "a/b/C") to a handle. Unknown types
// in a known package yield an imaginary handle, anything else nil.
func (e *Environment) TypeHandle(name string) *analyze.TypeHandle {
	key := common.BinaryName(strings.TrimSpace(name))
	if h, ok := e.handles.Get(key); ok {
		return h
	}

	h := e.index.TypeHandle(key)
	if h != nil {
		e.handles.Add(key, h)
	}

	return h
}

// Javadoc returns the doc comment of el.
func (e *Environment) Javadoc(el analyze.Element) string {
	return e.index.Javadoc(el)
}

// Names returns every type name known to the front end.
func (e *Environment) Names() []string {
	return e.index.Names()
}

// Option returns the invocation option, or the mixin.properties value.
func (e *Environment) Option(key string) string {
	return e.opts.Option(key)
}

// Token resolves a constraint token.
func (e *Environment) Token(name string) (int, bool) {
	return e.tokens.get(name)
}

// MixinsTargeting returns the internal names of the mixins targeting target,
// across this session and its imports.
func (e *Environment) MixinsTargeting(target string) []string {
	return e.targets.MixinsTargeting(target)
}

// Session returns the target session identifier.
func (e *Environment) Session() string {
	return e.targets.ID()
}

// Obfuscation exposes the obfuscation manager.
func (e *Environment) Obfuscation() *obf.Manager {
	return e.obf
}

// Declaration returns the registered mixin named name, or nil.
func (e *Environment) Declaration(name string) *mixin.Declaration {
	return e.mixins.Get(name)
}

// Declarations returns every registered mixin in registration order.
func (e *Environment) Declarations() []*mixin.Declaration {
	return e.mixins.Declarations()
}

// RegisterMixin registers a @Mixin class.
func (e *Environment) RegisterMixin(el *analyze.TypeElement) *mixin.Declaration {
	return e.mixins.RegisterMixin(el)
}

// RegisterOverwrite registers an @Overwrite method.
func (e *Environment) RegisterOverwrite(m *analyze.Member, ann *analyze.Annotation) {
	e.mixins.RegisterOverwrite(m, ann)
}

// RegisterShadow registers a @Shadow member.
func (e *Environment) RegisterShadow(m *analyze.Member, ann *analyze.Annotation) {
	e.mixins.RegisterShadow(m, ann)
}

// RegisterInjector registers an injector method.
func (e *Environment) RegisterInjector(m *analyze.Member, ann *analyze.Annotation) mixin.Result {
	return e.mixins.RegisterInjector(m, ann)
}

// OnPassStarted begins a pass. Cached type handles are dropped since the
// front end may have learned new types.
func (e *Environment) OnPassStarted() {
	e.handles.Purge()
	e.mixins.OnPassStarted()
}

// OnPassCompleted exports the target map and runs the LATE validators.
func (e *Environment) OnPassCompleted(ctx context.Context) {
	_, span := tracer.Start(ctx, "processor.Environment.OnPassCompleted")
	defer span.End()

	e.mixins.OnPassCompleted()

	if e.metrics != nil {
		e.metrics.PassCompleted()
	}
}

// WriteMappings writes the SRG files and the refmap named by the options.
func (e *Environment) WriteMappings(ctx context.Context) {
	_, span := tracer.Start(ctx, "processor.Environment.WriteMappings",
		trace.WithAttributes(attribute.Int("mixins", len(e.mixins.Declarations()))))
	defer span.End()

	e.obf.WriteSrgs()
	e.obf.WriteRefs()
}

// Clear drops every registered mixin.
func (e *Environment) Clear() {
	e.mixins.Clear()
}

// RunPass runs one processing pass over the types of round: mixin classes
// first, then @Shadow, @Overwrite and injector members, then the pass is
// completed. Cancellation stops the walk; the pass is then left open.
func (e *Environment) RunPass(ctx context.Context, round *analyze.Index) error {
	ctx, span := tracer.Start(ctx, "processor.Environment.RunPass",
		trace.WithAttributes(attribute.Int("types", round.Len())))
	defer span.End()

	e.OnPassStarted()

	types := round.Types()
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return e.abort(span, err)
		}

		if t.Annotation(mixin.AnnotationMixin) != nil {
			e.RegisterMixin(t)
		}
	}

	steps := []memberStep{
		{"Shadow", e.RegisterShadow},
		{"Overwrite", e.RegisterOverwrite},
	}

	for _, name := range mixin.InjectorAnnotations {
		steps = append(steps, memberStep{name, func(m *analyze.Member, ann *analyze.Annotation) {
			e.RegisterInjector(m, ann)
		}})
	}

	for _, step := range steps {
		for _, t := range types {
			if err := ctx.Err(); err != nil {
				return e.abort(span, err)
			}

			for _, m := range t.Members() {
				if ann := m.Annotation(step.annotation); ann != nil {
					step.register(m, ann)
				}
			}
		}
	}

	e.OnPassCompleted(ctx)

	span.SetAttributes(attribute.Int("mixins", len(e.mixins.PassDeclarations())))
	span.SetStatus(codes.Ok, "")

	return nil
}

type memberStep struct {
	annotation string
	register   func(*analyze.Member, *analyze.Annotation)
}

func (e *Environment) abort(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "pass cancelled")

	return fmt.Errorf("run pass: %w", err)
}
