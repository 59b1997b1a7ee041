// Package fetch is a thin net/http adapter demonstrating package
// deferred's combinator surface from a realistic caller: a Client.Get
// call turns a synchronous HTTP round trip into a *deferred.Deferred,
// usable with Timeout, Map, Recover and the rest of the core the way any
// other asynchronous source would be.
package fetch
