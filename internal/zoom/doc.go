// Package zoom provides a client for the Zoom cloud-recording API and the
// webhook primitives the server uses to accept Zoom's event deliveries.
//
// Authentication uses Zoom's server-to-server OAuth: an account-scoped
// client-credentials variant that exchanges the app's account id for a
// short-lived bearer token. The token source plugs into golang.org/x/oauth2
// so token caching, refresh, and request decoration follow the same idiom
// as the Google clients.
//
// Webhook deliveries are authenticated with an HMAC-SHA256 signature over
// "v0:{timestamp}:{body}"; VerifySignature checks it in constant time and
// Validate answers the endpoint.url_validation challenge Zoom sends when a
// webhook URL is registered.
package zoom
