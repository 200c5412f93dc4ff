package banlist

// Static is a fixed ban set, typically loaded from configuration. It
// satisfies the engine's Banlist interface.
type Static struct {
	ids map[string]struct{}
}

func NewStatic(ids []string) *Static {
	s := &Static{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Static) IsBanned(candidateID string) bool {
	_, banned := s.ids[candidateID]
	return banned
}

// Empty never bans anyone.
type Empty struct{}

func (Empty) IsBanned(string) bool { return false }
