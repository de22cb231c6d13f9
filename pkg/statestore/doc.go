// Package statestore implements the CSRF state lifecycle for the OAuth
// redirect round trip: a cryptographically random single-use token is issued
// when the authorization URL is requested and must come back unchanged on
// the callback before any provider credentials are accepted.
//
// Two implementations ship with the package. MemoryStore keeps tokens in a
// mutex-guarded map with a background sweep and suits single-instance
// deployments. RedisStore keeps the same contract on a shared Redis using
// GETDEL for atomic consumption, which is the drop-in choice for horizontal
// scaling.
//
//	store := statestore.NewMemoryStore(statestore.Config{})
//	defer store.Close()
//
//	token, err := store.Issue(ctx, "google", statestore.Metadata{IP: ip})
//	// ... redirect the client, then on callback:
//	err = store.ValidateAndConsume(ctx, "google", token, statestore.Metadata{IP: ip})
//
// A token is consumed exactly once: the entry is removed on the first
// validation attempt regardless of outcome, so two racing validations can
// never both succeed. Metadata binding is best effort (a field is compared
// only when both the stored entry and the caller supply it) unless the
// store is configured with StrictBinding.
package statestore
