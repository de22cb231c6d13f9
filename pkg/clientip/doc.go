// Package clientip resolves the originating client address of an
// *http.Request behind reverse proxies. The login flow records the address
// in the CSRF state at issue time and rechecks it on the callback, so both
// handlers must resolve it the same way.
//
// Headers are consulted in priority order (CF-Connecting-IP,
// X-Forwarded-For, X-Real-IP) before falling back to RemoteAddr. GetIP
// never fails; it returns an empty string when no valid address is found.
package clientip
