package badger

// Store bundles the repositories that share one BadgerDB instance.
type Store struct {
	backend  *Backend
	Catalog  *CatalogRepository
	Vectors  *VectorRepository
	Indexes  *IndexRepository
	Sessions *SessionRepository
}

// OpenStore opens (or creates) a store at path.
func OpenStore(path string) (*Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{
		backend:  backend,
		Catalog:  NewCatalogRepository(backend),
		Vectors:  NewVectorRepository(backend),
		Indexes:  NewIndexRepository(backend),
		Sessions: NewSessionRepository(backend),
	}
}

// Backend returns the underlying backend.
func (s *Store) Backend() *Backend {
	return s.backend
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}
