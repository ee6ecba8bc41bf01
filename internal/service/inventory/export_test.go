package inventory

// SetIDGenerator swaps the product id generator.
func SetIDGenerator(s *Service, fn func() string) {
	s.genID = fn
}
