package spacedb

import "github.com/spacedb/spacedb/pkg/geom"

// Catalog is the DataBase-equivalent supplemented in SPEC_FULL.md: a named
// collection of Spaces and the SpaceDBs built against them, the minimum a
// caller needs to resolve a space name into a Space definition or a queryable
// SpaceDB without threading both maps through every call by hand.
type Catalog struct {
	spaces map[string]*geom.Space
	dbs    map[string]*SpaceDB
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		spaces: make(map[string]*geom.Space),
		dbs:    make(map[string]*SpaceDB),
	}
}

// AddSpace registers a Space definition under its own name.
func (c *Catalog) AddSpace(space *geom.Space) {
	c.spaces[space.Name()] = space
}

// AddSpaceDB registers db under name, typically the reference space's name.
func (c *Catalog) AddSpaceDB(name string, db *SpaceDB) {
	c.dbs[name] = db
}

// Space looks up a registered Space definition by name.
func (c *Catalog) Space(name string) (*geom.Space, error) {
	s, ok := c.spaces[name]
	if !ok {
		return nil, &ErrUnknownSpace{Name: name}
	}
	return s, nil
}

// SpaceDB looks up a registered SpaceDB by name.
func (c *Catalog) SpaceDB(name string) (*SpaceDB, error) {
	db, ok := c.dbs[name]
	if !ok {
		return nil, &ErrUnknownSpace{Name: name}
	}
	return db, nil
}

// SpaceNames returns every registered space name, in no particular order.
func (c *Catalog) SpaceNames() []string {
	names := make([]string, 0, len(c.spaces))
	for name := range c.spaces {
		names = append(names, name)
	}
	return names
}
