package repository

// StoreOption applies a configuration option to the SQLiteStore.
type StoreOption func(*SQLiteStore)

// WithHistoryCap sets how many assessments are kept per person. A value of
// 0 or below disables pruning.
func WithHistoryCap(n int) StoreOption {
	return func(s *SQLiteStore) {
		s.historyCap = n
	}
}
