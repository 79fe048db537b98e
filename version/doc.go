// Package version decides whether a remotely advertised build is newer than the
// installed one.
//
// Build identifiers are opaque strings such as "Slim-hammerhead-20230215-1200"
// whose version information is a single delimiter-separated token. The token at
// a configured position is parsed as a calendar date using a Java-style date
// pattern (for example "yyyyMMdd") and the two dates are compared
// chronologically.
//
// Every comparison is a pure function of (local, remote, Config). Malformed or
// ambiguous input never reports an update: the verdict collapses to false and
// the reason is available on Result.Err and through the Diagnostics sink.
//
// There is no semantic-version ordering here. Date ordering is the only scheme.
package version
