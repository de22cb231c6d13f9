// Package social is the HTTP surface of the federated login flow: a chi
// router with JSON handlers over the account resolver and linking service.
//
// Routes:
//
//	GET  /{provider}/url     authorization URL + CSRF state
//	POST /{provider}/login   resolve a callback into a logged-in account
//	POST /{provider}/link    attach a provider identity (authenticated)
//	POST /{provider}/unlink  detach a provider identity (authenticated)
//	GET  /linked             list linked identities (authenticated)
//
// Authenticated routes read the caller's user ID from the request context
// via SetUserID; session verification middleware stays outside this module.
package social
