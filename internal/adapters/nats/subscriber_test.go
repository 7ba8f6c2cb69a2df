package natsadapter

import "testing"

func TestSubscribeVisitor_RejectsWildcards(t *testing.T) {
	s := &Subscriber{}
	for _, id := range []string{"", "a.b", "*", ">", "a b"} {
		if _, err := s.SubscribeVisitor(id, func([]byte) {}); err == nil {
			t.Errorf("visitor id %q should be rejected", id)
		}
	}
}
