package props

import "sync"

// Cache resolves each property at most once. A property stays unresolved
// while its source answers "", so a failed lookup is retried on the next call;
// the first non-empty answer is kept and reused.
type Cache struct {
	src Source

	mu       sync.Mutex
	resolved map[string]string
}

func NewCache(src Source) *Cache {
	return &Cache{src: src, resolved: make(map[string]string)}
}

func (c *Cache) Lookup(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.resolved[name]; ok {
		return v
	}
	if c.src == nil {
		return ""
	}
	v := c.src.Lookup(name)
	if v != "" {
		c.resolved[name] = v
	}
	return v
}

// Resolved returns the cached value without consulting the source.
func (c *Cache) Resolved(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.resolved[name]
	return v, ok
}

// Reset forgets every resolved property.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = make(map[string]string)
}

// Device answers the two properties the update check needs: the installed
// build name and the device name.
type Device struct {
	BuildNameProp  string
	DeviceNameProp string

	cache *Cache
}

func NewDevice(src Source, buildNameProp, deviceNameProp string) *Device {
	return &Device{
		BuildNameProp:  buildNameProp,
		DeviceNameProp: deviceNameProp,
		cache:          NewCache(src),
	}
}

// CurrentBuild returns the installed build identifier, or "".
func (d *Device) CurrentBuild() string {
	return d.cache.Lookup(d.BuildNameProp)
}

// Name returns the device name, or "".
func (d *Device) Name() string {
	return d.cache.Lookup(d.DeviceNameProp)
}

// Lookup exposes the device's cached source for arbitrary properties.
func (d *Device) Lookup(name string) string {
	return d.cache.Lookup(name)
}
