package app

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/ports"
)

// cacheKeyVersion changes whenever built-in rule behavior changes in a way
// that makes old cached reports wrong.
const cacheKeyVersion = "lintpipe/report/v2"

// ruleLister is the part of the registry the cache key depends on.
type ruleLister interface {
	Rules() []ports.Rule
}

// cachedLinter serves reports from a ReportCache when the exact same inputs
// were linted before. Lint is deterministic in its inputs, so a hit is
// equivalent to running the engine.
//
// Rules are keyed by their metadata plus, for data-driven rules, their
// fingerprint. A custom Go rule whose code changes under the same metadata
// is not detected; bump cacheKeyVersion or clear the cache.
type cachedLinter struct {
	next   ports.Linter
	cache  ports.ReportCache
	rules  ruleLister
	logger *log.Logger
}

func newCachedLinter(next ports.Linter, cache ports.ReportCache, rules ruleLister, logger *log.Logger) *cachedLinter {
	return &cachedLinter{next: next, cache: cache, rules: rules, logger: logger}
}

// Lint implements ports.Linter. Cache failures fall back to the engine;
// engine errors are never cached.
func (c *cachedLinter) Lint(path string, src []byte, opts ports.Options, literate bool) (*ports.Report, error) {
	key, err := cacheKey(path, src, opts, literate, c.rules.Rules())
	if err != nil {
		c.logger.Debug("cache key unavailable", "file", path, "err", err)
		return c.next.Lint(path, src, opts, literate)
	}

	if rep, ok, err := c.cache.Get(key); err != nil {
		c.logger.Warn("cache read failed", "file", path, "err", err)
	} else if ok {
		c.logger.Debug("cache hit", "file", path)
		return rep, nil
	}

	rep, err := c.next.Lint(path, src, opts, literate)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, rep); err != nil {
		c.logger.Warn("cache write failed", "file", path, "err", err)
	}
	return rep, nil
}

// cacheKey digests every input that affects a report. Options and rule
// metadata are encoded as JSON, which sorts map keys.
func cacheKey(path string, src []byte, opts ports.Options, literate bool, rules []ports.Rule) (string, error) {
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	field(h, []byte(cacheKeyVersion))
	field(h, []byte(path))
	field(h, src)
	field(h, optsJSON)
	if literate {
		field(h, []byte{1})
	} else {
		field(h, []byte{0})
	}

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(rules)))
	h.Write(n[:])
	for _, r := range rules {
		meta, err := json.Marshal(r.Meta())
		if err != nil {
			return "", err
		}
		field(h, meta)
		var fp string
		if f, ok := r.(ports.Fingerprinter); ok {
			fp = f.Fingerprint()
		}
		field(h, []byte(fp))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// field writes b length-prefixed so adjacent fields cannot run together.
func field(h hash.Hash, b []byte) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}
