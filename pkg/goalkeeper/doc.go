// Package goalkeeper records whether named events ("goals") have happened.
//
// A goal is met once a timestamp exists under its key in a kv.Store. The
// record expires on its own after the goal's expiration, or is removed with
// Clear.
//
// # Goals
//
//	g := goalkeeper.NewGoal(goalkeeper.Label("import", customerID))
//	if _, err := g.MarkMet(ctx); err != nil {
//		return err
//	}
//	at, ok, err := g.MetAt(ctx)
//
// Keys are "<namespace>:<label>". Neither part is escaped, so the label "a:b"
// and the compound label Label("a", "b") share a key.
//
// # Sets
//
//	s := goalkeeper.NewSet().Add("extract").Add("transform").Add("load")
//	done, err := s.IsMet(ctx)
//	pending, err := s.Unmet(ctx)
//	finished, ok, err := s.MetAt(ctx) // latest member completion
//
// # Configuration
//
// Goals read their namespace, default expiration, store and clock from a
// Settings value. Default returns the process-wide Config, which talks to a
// Redis on localhost until SetStore is called. The namespace is read each
// time a key is derived; the expiration is captured when a goal is built.
//
// # Concurrency
//
// MarkMet checks the record before writing it. Two processes marking the
// same goal at once may both write, in which case the later timestamp wins.
package goalkeeper
