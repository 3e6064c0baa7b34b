package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
	"github.com/philipp01105/fanlog/handler/filehandler"
	"github.com/philipp01105/fanlog/handler/httphandler"
	"github.com/philipp01105/fanlog/handler/sockethandler"
	"github.com/philipp01105/fanlog/handler/streamhandler"
	"github.com/philipp01105/fanlog/logger"
)

const (
	// DefaultCapacity is the handler queue size used when capacity is absent.
	DefaultCapacity = 1024
	// DefaultFlushInterval is used by file handlers when flush_interval is absent.
	DefaultFlushInterval = 1
)

// Built holds the registry and handlers created from a Document.
type Built struct {
	Registry *logger.Registry

	order    []string
	handlers map[string]handler.Handler
	attached map[string]bool
}

// Handler returns the handler built for id
func (b *Built) Handler(id string) (handler.Handler, bool) {
	h, ok := b.handlers[id]
	return h, ok
}

// HandlerIDs returns handler ids in definition order
func (b *Built) HandlerIDs() []string {
	return append([]string(nil), b.order...)
}

// Logger returns the named logger from the built registry
func (b *Built) Logger(name string) *logger.Logger {
	return b.Registry.GetLogger(name)
}

// Close shuts the registry down, which flushes and closes every attached
// handler, then closes the handlers no logger references.
func (b *Built) Close() error {
	err := b.Registry.Shutdown()
	for _, id := range b.order {
		if !b.attached[id] {
			err = multierr.Append(err, b.handlers[id].Close())
		}
	}
	return err
}

type builder struct {
	doc        *Document
	formatters map[string]formatter.Formatter
	filters    map[string]logger.Filter
	handlerIDs map[string]bool
	handlers   map[string]handler.Handler
	order      []string
}

// Build validates the document, then starts its handlers and loggers.
// Nothing is left running when Build fails.
func (d *Document) Build() (*Built, error) {
	b := &builder{
		doc:        d,
		formatters: make(map[string]formatter.Formatter),
		filters:    make(map[string]logger.Filter),
		handlerIDs: make(map[string]bool),
		handlers:   make(map[string]handler.Handler),
	}
	if err := b.buildFormatters(); err != nil {
		return nil, err
	}
	if err := b.buildFilters(); err != nil {
		return nil, err
	}
	if err := b.checkHandlers(); err != nil {
		return nil, err
	}
	levels, err := b.checkLoggers()
	if err != nil {
		return nil, err
	}
	opts, err := b.registryOptions()
	if err != nil {
		return nil, err
	}

	if err := b.buildHandlers(); err != nil {
		return nil, multierr.Append(err, b.closeHandlers())
	}
	reg, err := logger.NewRegistry(opts)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("%w: %w", ErrInvalid, err), b.closeHandlers())
	}

	built := &Built{
		Registry: reg,
		order:    b.order,
		handlers: b.handlers,
		attached: make(map[string]bool),
	}
	for i, spec := range d.Loggers {
		l := reg.GetLogger(spec.Name)
		if levels[i] != nil {
			l.SetLevel(*levels[i])
		}
		if spec.Propagate != nil {
			l.SetPropagate(*spec.Propagate)
		}
		for _, id := range spec.Filters {
			l.AddFilter(b.filters[id])
		}
		for _, id := range spec.Handlers {
			l.AddHandler(b.handlers[id])
			built.attached[id] = true
		}
	}
	// a multi handler closes its children, so they count as attached
	for i := len(d.Handlers) - 1; i >= 0; i-- {
		if h := d.Handlers[i]; h.Kind == HandlerMulti {
			for _, child := range h.Children {
				built.attached[child] = built.attached[child] || built.attached[h.ID]
			}
		}
	}
	return built, nil
}

func (b *builder) closeHandlers() error {
	var err error
	for _, id := range b.order {
		err = multierr.Append(err, b.handlers[id].Close())
	}
	return err
}

func (b *builder) registryOptions() (logger.Options, error) {
	o := b.doc.Options
	opts := logger.DefaultOptions()
	if o.Level != "" {
		lvl, err := parseLevel(o.Level)
		if err != nil {
			return opts, err
		}
		opts.Level = lvl
	}
	if o.Capacity < 0 {
		return opts, fmt.Errorf("%w: options.capacity must be > 0", ErrInvalid)
	}
	if o.Capacity > 0 {
		opts.Capacity = o.Capacity
	}
	f, err := b.resolveFormatter(o.Formatter)
	if err != nil {
		return opts, fmt.Errorf("options.formatter: %w", err)
	}
	opts.Formatter = f
	opts.DisableCaller = o.DisableCaller
	opts.WarnInterval = o.WarnInterval
	opts.JoinTimeout = o.JoinTimeout
	return opts, nil
}

func (b *builder) buildFormatters() error {
	for i, spec := range b.doc.Formatters {
		if spec.ID == "" {
			return fmt.Errorf("%w: formatters[%d] has no id", ErrInvalid, i)
		}
		if _, dup := b.formatters[spec.ID]; dup {
			return fmt.Errorf("%w: formatter %q", ErrDuplicate, spec.ID)
		}
		f, err := newFormatter(spec)
		if err != nil {
			return fmt.Errorf("formatter %q: %w", spec.ID, err)
		}
		b.formatters[spec.ID] = f
	}
	return nil
}

func newFormatter(spec FormatterSpec) (formatter.Formatter, error) {
	cfg := formatter.Config{IncludeCaller: spec.IncludeCaller, TimestampFormat: spec.TimestampFormat}
	switch strings.ToLower(spec.Kind) {
	case FormatterText, "":
		return formatter.NewTextFormatter(cfg), nil
	case FormatterJSON:
		return formatter.NewJSONFormatter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: formatter kind %q", ErrInvalid, spec.Kind)
	}
}

// resolveFormatter accepts an id, defined in the document or built in, or
// an inline formatter definition. nil selects the consumer's default.
func (b *builder) resolveFormatter(ref any) (formatter.Formatter, error) {
	switch v := ref.(type) {
	case nil:
		return nil, nil
	case string:
		if f, ok := b.formatters[v]; ok {
			return f, nil
		}
		if v == formatter.TextID || v == formatter.JSONID {
			return formatter.Lookup(v)
		}
		return nil, fmt.Errorf("%w: formatter %q", ErrUnknownReference, v)
	case map[string]any:
		var spec FormatterSpec
		if err := decode(v, &spec); err != nil {
			return nil, err
		}
		return newFormatter(spec)
	default:
		return nil, fmt.Errorf("%w: formatter must be an id or a mapping, got %T", ErrInvalid, ref)
	}
}

func (b *builder) buildFilters() error {
	for i, spec := range b.doc.Filters {
		if spec.ID == "" {
			return fmt.Errorf("%w: filters[%d] has no id", ErrInvalid, i)
		}
		if _, dup := b.filters[spec.ID]; dup {
			return fmt.Errorf("%w: filter %q", ErrDuplicate, spec.ID)
		}
		f, err := newFilter(spec)
		if err != nil {
			return fmt.Errorf("filter %q: %w", spec.ID, err)
		}
		b.filters[spec.ID] = f
	}
	return nil
}

func newFilter(spec FilterSpec) (logger.Filter, error) {
	switch spec.Kind {
	case FilterName:
		return logger.NewNameFilter(spec.Name), nil
	case FilterLevelRange:
		f := &logger.LevelRangeFilter{Min: core.TraceLevel, Max: core.CriticalLevel}
		var err error
		if spec.Min != "" {
			if f.Min, err = parseLevel(spec.Min); err != nil {
				return nil, err
			}
		}
		if spec.Max != "" {
			if f.Max, err = parseLevel(spec.Max); err != nil {
				return nil, err
			}
		}
		if f.Min > f.Max {
			return nil, fmt.Errorf("%w: min %s above max %s", ErrInvalid, f.Min, f.Max)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: filter kind %q", ErrInvalid, spec.Kind)
	}
}

// checkHandlers validates ids and references without starting anything.
func (b *builder) checkHandlers() error {
	for i, spec := range b.doc.Handlers {
		if spec.ID == "" {
			return fmt.Errorf("%w: handlers[%d] has no id", ErrInvalid, i)
		}
		if b.handlerIDs[spec.ID] {
			return fmt.Errorf("%w: handler %q", ErrDuplicate, spec.ID)
		}
		switch spec.Kind {
		case HandlerStream, HandlerFile, HandlerRotating, HandlerArchive, HandlerSocket, HandlerHTTP:
		case HandlerMulti:
			seen := make(map[string]bool, len(spec.Children))
			for _, child := range spec.Children {
				if !b.handlerIDs[child] {
					return fmt.Errorf("%w: handler %q child %q must be defined before it", ErrUnknownReference, spec.ID, child)
				}
				if seen[child] {
					return fmt.Errorf("%w: handler %q child %q", ErrDuplicate, spec.ID, child)
				}
				seen[child] = true
			}
		default:
			return fmt.Errorf("%w: handler %q kind %q", ErrInvalid, spec.ID, spec.Kind)
		}
		if _, err := b.resolveFormatter(spec.Formatter); err != nil {
			return fmt.Errorf("handler %q: %w", spec.ID, err)
		}
		b.handlerIDs[spec.ID] = true
	}
	return nil
}

// checkLoggers validates logger entries and returns their parsed levels.
func (b *builder) checkLoggers() ([]*core.Level, error) {
	levels := make([]*core.Level, len(b.doc.Loggers))
	names := make(map[string]bool, len(b.doc.Loggers))
	filters := make(map[string]bool, len(b.filters))
	for id := range b.filters {
		filters[id] = true
	}
	for i, spec := range b.doc.Loggers {
		name := spec.Name
		if name == "" {
			name = logger.RootName
		}
		if names[name] {
			return nil, fmt.Errorf("%w: logger %q", ErrDuplicate, name)
		}
		names[name] = true

		if spec.Level != "" {
			lvl, err := parseLevel(spec.Level)
			if err != nil {
				return nil, fmt.Errorf("logger %q: %w", name, err)
			}
			levels[i] = &lvl
		}
		if err := checkRefs(name, "handler", spec.Handlers, b.handlerIDs); err != nil {
			return nil, err
		}
		if err := checkRefs(name, "filter", spec.Filters, filters); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

func checkRefs(loggerName, what string, refs []string, defined map[string]bool) error {
	seen := make(map[string]bool, len(refs))
	for _, id := range refs {
		if !defined[id] {
			return fmt.Errorf("%w: logger %q %s %q", ErrUnknownReference, loggerName, what, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: logger %q %s %q", ErrDuplicate, loggerName, what, id)
		}
		seen[id] = true
	}
	return nil
}

func (b *builder) buildHandlers() error {
	for _, spec := range b.doc.Handlers {
		h, err := b.newHandler(spec)
		if err != nil {
			return fmt.Errorf("handler %q: %w", spec.ID, err)
		}
		b.handlers[spec.ID] = h
		b.order = append(b.order, spec.ID)
	}
	return nil
}

func (b *builder) newHandler(spec HandlerSpec) (handler.Handler, error) {
	if spec.Kind == HandlerMulti {
		children := make([]handler.Handler, 0, len(spec.Children))
		for _, id := range spec.Children {
			children = append(children, b.handlers[id])
		}
		return handler.NewMultiHandler(children...), nil
	}

	opts, err := b.handlerOptions(spec)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case HandlerStream:
		w, err := streamhandler.WriterByName(spec.Stream)
		if err != nil {
			return nil, err
		}
		return streamhandler.NewStreamHandler(streamhandler.StreamConfig{Options: opts, Writer: w})
	case HandlerFile:
		return filehandler.NewFileHandler(fileConfig(spec, opts))
	case HandlerRotating:
		return filehandler.NewRotatingFileHandler(filehandler.RotatingConfig{
			FileConfig:  fileConfig(spec, opts),
			MaxBytes:    spec.MaxBytes,
			BackupCount: spec.BackupCount,
		})
	case HandlerArchive:
		return filehandler.NewArchiveHandler(filehandler.ArchiveConfig{
			Options:    opts,
			Filename:   spec.Filename,
			MaxSizeMB:  spec.MaxSizeMB,
			MaxAgeDays: spec.MaxAgeDays,
			MaxBackups: spec.MaxBackups,
			Compress:   spec.Compress,
			LocalTime:  spec.LocalTime,
		})
	case HandlerSocket:
		return sockethandler.NewSocketHandler(sockethandler.SocketConfig{
			Options:            opts,
			Network:            spec.Network,
			Address:            spec.Address,
			TLS:                spec.TLS,
			ServerName:         spec.ServerName,
			InsecureSkipVerify: spec.InsecureSkipVerify,
			ConnectTimeout:     spec.ConnectTimeout,
			WriteTimeout:       spec.WriteTimeout,
			MaxFrameSize:       spec.MaxFrameSize,
			Backoff:            spec.Backoff.config(),
		})
	case HandlerHTTP:
		enc, err := httphandler.ParseEncoding(spec.Encoding)
		if err != nil {
			return nil, err
		}
		return httphandler.NewHTTPHandler(httphandler.HTTPConfig{
			Options:            opts,
			URL:                spec.URL,
			Method:             spec.Method,
			Encoding:           enc,
			Fields:             spec.Fields,
			Username:           spec.Username,
			Password:           spec.Password,
			BearerToken:        spec.BearerToken,
			Headers:            spec.Headers,
			RequestTimeout:     spec.RequestTimeout,
			InsecureSkipVerify: spec.InsecureSkipVerify,
			Retries:            spec.Retries,
			Backoff:            spec.Backoff.config(),
		})
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalid, spec.Kind)
	}
}

func (b *builder) handlerOptions(spec HandlerSpec) (handler.Options, error) {
	overflow, err := handler.ParseOverflowPolicy(spec.Overflow)
	if err != nil {
		return handler.Options{}, err
	}
	f, err := b.resolveFormatter(spec.Formatter)
	if err != nil {
		return handler.Options{}, err
	}
	capacity := DefaultCapacity
	if spec.Capacity != nil {
		capacity = *spec.Capacity
	}
	return handler.Options{
		Name:         spec.ID,
		Capacity:     capacity,
		Overflow:     overflow,
		BlockTimeout: spec.BlockTimeout,
		Formatter:    f,
		DrainTimeout: spec.DrainTimeout,
		WarnInterval: spec.WarnInterval,
	}, nil
}

func fileConfig(spec HandlerSpec, opts handler.Options) filehandler.FileConfig {
	interval := DefaultFlushInterval
	if spec.FlushInterval != nil {
		interval = *spec.FlushInterval
	}
	return filehandler.FileConfig{
		Options:             opts,
		Filename:            spec.Filename,
		FlushRecordInterval: interval,
		BufferSize:          spec.BufferSize,
	}
}

func (s BackoffSpec) config() handler.BackoffConfig {
	return handler.BackoffConfig{
		Base:       s.Base,
		Cap:        s.Cap,
		ResetAfter: s.ResetAfter,
		Deadline:   s.Deadline,
		Jitter:     s.Jitter,
	}
}

func parseLevel(s string) (core.Level, error) {
	lvl, err := core.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return lvl, nil
}
