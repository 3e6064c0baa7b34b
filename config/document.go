package config

import "time"

// Document is the decoded form of a configuration file.
type Document struct {
	Options    OptionsSpec     `koanf:"options"`
	Formatters []FormatterSpec `koanf:"formatters"`
	Filters    []FilterSpec    `koanf:"filters"`
	Handlers   []HandlerSpec   `koanf:"handlers"`
	Loggers    []LoggerSpec    `koanf:"loggers"`
}

// OptionsSpec configures the registry every logger is created from.
type OptionsSpec struct {
	Level         string        `koanf:"level"`
	Capacity      int           `koanf:"capacity"`
	DisableCaller bool          `koanf:"disable_caller"`
	WarnInterval  time.Duration `koanf:"warn_interval"`
	JoinTimeout   time.Duration `koanf:"join_timeout"`
	// Formatter is an id or an inline formatter, see FormatterSpec.
	Formatter any `koanf:"formatter"`
}

// Formatter kinds.
const (
	FormatterText = "text"
	FormatterJSON = "json"
)

// FormatterSpec defines a formatter. Inline formatters omit ID.
type FormatterSpec struct {
	ID              string `koanf:"id"`
	Kind            string `koanf:"kind"`
	IncludeCaller   bool   `koanf:"include_caller"`
	TimestampFormat string `koanf:"timestamp_format"`
}

// Filter kinds.
const (
	FilterName       = "name"
	FilterLevelRange = "level_range"
)

// FilterSpec defines a filter.
type FilterSpec struct {
	ID   string `koanf:"id"`
	Kind string `koanf:"kind"`
	// Name is the logger name prefix for FilterName.
	Name string `koanf:"name"`
	// Min and Max bound FilterLevelRange. Empty means TRACE and CRITICAL.
	Min string `koanf:"min"`
	Max string `koanf:"max"`
}

// Handler kinds.
const (
	HandlerStream   = "stream"
	HandlerFile     = "file"
	HandlerRotating = "rotating"
	HandlerArchive  = "archive"
	HandlerSocket   = "socket"
	HandlerHTTP     = "http"
	HandlerMulti    = "multi"
)

// HandlerSpec defines a handler. Kind selects which of the kind specific
// keys apply; the others are ignored.
type HandlerSpec struct {
	ID   string `koanf:"id"`
	Kind string `koanf:"kind"`

	// Capacity defaults to DefaultCapacity when absent; an explicit 0 is
	// an error.
	Capacity     *int          `koanf:"capacity"`
	Overflow     string        `koanf:"overflow"`
	BlockTimeout time.Duration `koanf:"block_timeout"`
	DrainTimeout time.Duration `koanf:"drain_timeout"`
	WarnInterval time.Duration `koanf:"warn_interval"`
	// Formatter is an id or an inline formatter.
	Formatter any `koanf:"formatter"`

	// stream
	Stream string `koanf:"stream"`

	// file, rotating, archive
	Filename string `koanf:"filename"`
	// FlushInterval defaults to 1 when absent; an explicit 0 is an error.
	FlushInterval *int  `koanf:"flush_interval"`
	BufferSize    int   `koanf:"buffer_size"`
	MaxBytes      int64 `koanf:"max_bytes"`
	BackupCount   int   `koanf:"backup_count"`
	MaxSizeMB     int   `koanf:"max_size_mb"`
	MaxAgeDays    int   `koanf:"max_age_days"`
	MaxBackups    int   `koanf:"max_backups"`
	Compress      bool  `koanf:"compress"`
	LocalTime     bool  `koanf:"local_time"`

	// socket
	Network            string        `koanf:"network"`
	Address            string        `koanf:"address"`
	TLS                bool          `koanf:"tls"`
	ServerName         string        `koanf:"server_name"`
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"`
	ConnectTimeout     time.Duration `koanf:"connect_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	MaxFrameSize       int           `koanf:"max_frame_size"`

	// http
	URL            string            `koanf:"url"`
	Method         string            `koanf:"method"`
	Encoding       string            `koanf:"encoding"`
	Fields         []string          `koanf:"fields"`
	Username       string            `koanf:"username"`
	Password       string            `koanf:"password"`
	BearerToken    string            `koanf:"bearer_token"`
	Headers        map[string]string `koanf:"headers"`
	RequestTimeout time.Duration     `koanf:"request_timeout"`
	Retries        int               `koanf:"retries"`

	// socket, http
	Backoff BackoffSpec `koanf:"backoff"`

	// multi: ids of handlers defined earlier in the list
	Children []string `koanf:"children"`
}

// BackoffSpec configures reconnect and retry delays.
type BackoffSpec struct {
	Base       time.Duration `koanf:"base"`
	Cap        time.Duration `koanf:"cap"`
	ResetAfter time.Duration `koanf:"reset_after"`
	Deadline   time.Duration `koanf:"deadline"`
	Jitter     float64       `koanf:"jitter"`
}

// LoggerSpec configures one named logger. "root" and "" name the root.
type LoggerSpec struct {
	Name      string   `koanf:"name"`
	Level     string   `koanf:"level"`
	Propagate *bool    `koanf:"propagate"`
	Handlers  []string `koanf:"handlers"`
	Filters   []string `koanf:"filters"`
}
