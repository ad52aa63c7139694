// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

// configs stores the values of the configurable parameters of a Manager.
type configs struct {
	nodesize  int // initial number of nodes in the substrate table
	cachesize int // initial size of the substrate operation caches
}

func makeconfigs() *configs {
	return &configs{nodesize: 10000, cachesize: 5000}
}

// Option is a configuration option for NewManager.
type Option func(*configs)

// Nodesize is a configuration option (function). Used as a parameter in
// NewManager it sets a preferred initial size for the substrate node table.
// The table can grow during computation; the default of 10 000 nodes is
// enough for small and medium interfaces.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size > 0 {
			c.nodesize = size
		}
	}
}

// Cachesize is a configuration option (function). Used as a parameter in
// NewManager it sets the initial number of entries in the substrate
// operation caches. The default value is 5 000.
func Cachesize(size int) Option {
	return func(c *configs) {
		if size > 0 {
			c.cachesize = size
		}
	}
}
