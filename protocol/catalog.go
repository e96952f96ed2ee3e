package protocol

import (
	"fmt"
	"sync"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// CatalogVersion is bumped whenever a built-in format changes bytes
const CatalogVersion = `2024.3`

// StarlightFormat is the name of the production format
const StarlightFormat = starlightN

// Catalog is an ordered, versioned collection of formats. Order is the order
// formats are tried when probing.
type Catalog struct {
	Version string
	formats []*Format
	index   map[string]*Format
	sync.RWMutex
}

// NewCatalog returns a catalog of formats in the given order. Names must be
// unique.
func NewCatalog(version string, formats ...*Format) (*Catalog, error) {
	c := &Catalog{
		Version: version,
		index:   make(map[string]*Format, len(formats)),
	}
	for _, f := range formats {
		if err := c.Add(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the built-in catalog with starlight first
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		formats := append([]*Format{starlightFormat()}, vendorFormats()...)
		c, err := NewCatalog(CatalogVersion, formats...)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Add appends f to the catalog
func (c *Catalog) Add(f *Format) error {
	if f == nil || f.Name == `` {
		return fmt.Errorf(`invalid format: %w`, common.ErrUnknownFormat)
	}
	c.Lock()
	defer c.Unlock()
	if _, ok := c.index[f.Name]; ok {
		return fmt.Errorf(`format %s: %w`, f.Name, common.ErrDuplicate)
	}
	c.index[f.Name] = f
	c.formats = append(c.formats, f)
	return nil
}

// Lookup returns the format registered under name
func (c *Catalog) Lookup(name string) (*Format, error) {
	c.RLock()
	defer c.RUnlock()
	f, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf(`format %q: %w`, name, common.ErrUnknownFormat)
	}
	return f, nil
}

// Formats returns all formats in catalog order
func (c *Catalog) Formats() []*Format {
	c.RLock()
	defer c.RUnlock()
	out := make([]*Format, len(c.formats))
	copy(out, c.formats)
	return out
}

// Supporting returns, in catalog order, the formats able to encode kind
func (c *Catalog) Supporting(kind common.CommandKind) []*Format {
	c.RLock()
	defer c.RUnlock()
	var out []*Format
	for _, f := range c.formats {
		if f.Supports(kind) {
			out = append(out, f)
		}
	}
	return out
}

// Names returns format names in catalog order
func (c *Catalog) Names() []string {
	c.RLock()
	defer c.RUnlock()
	out := make([]string, len(c.formats))
	for i, f := range c.formats {
		out[i] = f.Name
	}
	return out
}

// NewCodec binds the named format from the default catalog
func NewCodec(name string) (Codec, error) {
	return DefaultCatalog().Codec(name)
}

// Codec binds the named format
func (c *Catalog) Codec(name string) (Codec, error) {
	f, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Encode encodes cmd with codec, failing closed when no codec is bound
func Encode(codec Codec, cmd common.Command) ([]byte, error) {
	if codec == nil {
		return nil, common.ErrUnboundProtocol
	}
	return codec.Encode(cmd)
}
