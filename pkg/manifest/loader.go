package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/cespare/xxhash/v2"
)

// ErrInvalid is returned when a manifest does not satisfy the schema
var ErrInvalid = errors.New("invalid manifest")

//go:embed schema.cue
var schemaSource []byte

// Loader compiles manifests against the embedded schema. Decoded manifests
// are cached by content digest.
type Loader struct {
	// mu serializes use of ctx
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
	cache  *Cache
}

// NewLoader creates a new manifest loader with caching
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Manifest"))
	if !def.Exists() {
		return nil, fmt.Errorf("#Manifest definition not found in schema")
	}

	return &Loader{
		ctx:    ctx,
		schema: def,
		cache:  NewCache(),
	}, nil
}

// Load reads and decodes the manifest at path
func Load(path string) (*Manifest, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}

// LoadFromContent decodes a manifest from CUE or JSON source
func LoadFromContent(content []byte) (*Manifest, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.LoadFromContent(content)
}

// Load reads and decodes the manifest at path
func (l *Loader) Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return l.compile(content, path)
}

// LoadFromContent decodes a manifest from CUE or JSON source
func (l *Loader) LoadFromContent(content []byte) (*Manifest, error) {
	return l.compile(content, "manifest.cue")
}

func (l *Loader) compile(content []byte, filename string) (*Manifest, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalid, filename)
	}

	key := fmt.Sprintf("%x", xxhash.Sum64(content))
	if cached, found := l.cache.Get(key); found {
		return cached, nil
	}

	data, err := l.evaluate(content, filename)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	l.cache.Set(key, &m)
	return &m, nil
}

// evaluate unifies the source with #Manifest and returns it as JSON
func (l *Loader) evaluate(content []byte, filename string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := l.ctx.CompileBytes(content, cue.Filename(filename))
	if value.Err() != nil {
		return nil, fmt.Errorf("failed to compile manifest: %s", cueerrors.Details(value.Err(), nil))
	}

	unified := l.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}

	data, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest to JSON: %w", err)
	}
	return data, nil
}

// CacheSize returns the number of manifests cached by the loader
func (l *Loader) CacheSize() int {
	return l.cache.Size()
}
