package store

import (
	"fmt"

	"go.uber.org/zap"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	RedisURI      string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the configured backend. The returned close function
// releases the connection and is safe to call once.
func Open(opts Options, log *zap.Logger) (Store, func(), error) {
	switch opts.Backend {
	case BackendRedis, "":
		r, err := NewRedis(opts.RedisURI, log)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case BackendMongo:
		m, err := NewMongo(opts.MongoURI, opts.MongoDatabase, log)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case BackendMemory:
		log.Warn("using in-memory store, state is lost on restart")
		return NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
