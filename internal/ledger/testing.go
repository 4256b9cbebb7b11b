package ledger

// SeedLedger is a test helper that seeds a ledger record when using the
// in-memory store.
func SeedLedger(s Store, l UserLedger) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.ledgers[l.Identity] = l
	}
}
