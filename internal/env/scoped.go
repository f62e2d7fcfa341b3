package env

import "errors"

// Scoped wraps an Env and remembers the value each key had before its first
// write so Restore can put it back.
type Scoped struct {
	Env
	saved map[string]prior
	order []string
}

type prior struct {
	value string
	ok    bool
}

func NewScoped(e Env) *Scoped {
	return &Scoped{Env: e, saved: make(map[string]prior)}
}

func (s *Scoped) Set(key, value string) error {
	s.remember(key)
	return s.Env.Set(key, value)
}

func (s *Scoped) Unset(key string) error {
	s.remember(key)
	return s.Env.Unset(key)
}

func (s *Scoped) remember(key string) {
	if _, seen := s.saved[key]; seen {
		return
	}
	v, ok := s.Env.Lookup(key)
	s.saved[key] = prior{value: v, ok: ok}
	s.order = append(s.order, key)
}

// Restore reverts every key touched through s, newest first.
func (s *Scoped) Restore() error {
	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		key := s.order[i]
		p := s.saved[key]
		if p.ok {
			errs = append(errs, s.Env.Set(key, p.value))
		} else {
			errs = append(errs, s.Env.Unset(key))
		}
	}
	s.saved = make(map[string]prior)
	s.order = nil
	return errors.Join(errs...)
}

// With runs fn against a scoped view of e and restores e afterwards.
func With(e Env, fn func(Env) error) error {
	s := NewScoped(e)
	err := fn(s)
	return errors.Join(err, s.Restore())
}
