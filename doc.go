/*
Package cors provides [net/http] middleware for
[Cross-Origin Resource Sharing (CORS)] whose behavior can be determined
anew for each request.

Unlike most CORS middleware libraries, whose behavior is fixed when the
middleware is built, this package resolves its effective configuration
per request, in up to two sequential steps:

 1. if the middleware was built from a [ConfigResolverFunc], that
    function produces the request's configuration (or an error);
 2. if the resulting configuration carries a [DynamicOrigin] policy,
    that policy's [OriginResolverFunc] produces the request's concrete
    origin policy (or an error, or a denial).

Only then does the (pure, synchronous) decision engine compute the
Access-Control-* response headers and decide whether to terminate the
request (preflight) or delegate to the next handler. Both resolvers are
single-shot and are assumed to complete; there is no retry and no
timeout within this package.

Two integration shapes are available: [*Middleware.Wrap] embeds the
middleware in a [http.Handler] chain, and [*Middleware.Process] drives
it imperatively, returning resolution errors to the caller.

Care is required for CORS middleware to work as intended.
Be particularly wary of negative interference from other software
components that play a role in processing requests and composing their
responses. In particular:

  - Because [CORS-preflight requests] use [OPTIONS] as their method,
    you should not prevent OPTIONS requests from reaching your CORS
    middleware; otherwise, preflight requests will not get properly
    handled and browser-based clients will likely experience
    CORS-related errors.
  - A [ReflectOrigins] policy echoes the request's own origin back to
    allowed clients; this is what enables credentialed access from an
    allow-listed set of origins. It is not equivalent to [AnyOrigin],
    which always emits the wildcard and is unusable with credentials.
  - Multiple CORS middleware must not be stacked.

[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
[OPTIONS]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Methods/OPTIONS
*/
package cors
