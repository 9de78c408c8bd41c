package repository

import "time"

// Option configures the stores that support it.
type Option func(*settings)

type settings struct {
	now      func() time.Time
	fileMode uint32
	dirMode  uint32
	key      string
	table    string
}

func defaultSettings() settings {
	return settings{
		now:      time.Now,
		fileMode: 0o644,
		dirMode:  0o755,
		key:      "hypetorch:document",
		table:    "hype_documents",
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock overrides the clock used for modification times (memory, redis, postgres).
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFileMode sets the permission bits of the document file.
func WithFileMode(mode uint32) Option {
	return func(s *settings) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithKey sets the Redis key (and the postgres row name) the document lives under.
func WithKey(key string) Option {
	return func(s *settings) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTable sets the postgres table name.
func WithTable(table string) Option {
	return func(s *settings) {
		if table != "" {
			s.table = table
		}
	}
}
