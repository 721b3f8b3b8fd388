// Package webhook implements the inbound GitHub endpoint with HMAC-SHA1
// signature verification.
//
// GitHub signs each pull_request delivery over the raw body and sends the
// digest in the X-Hub-Signature header as "sha1=<hex>". Verification uses
// crypto/subtle constant-time comparison and fails closed: any algorithm
// label other than sha1, malformed hex, or digest mismatch rejects the
// request with a generic 403 before the body is parsed.
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body read under the size limit (413 if exceeded)
//  3. Signature verified over the raw body (403 on any mismatch)
//  4. Body decoded as a pull_request event (400 on malformed JSON)
//  5. Sync pipeline runs: fetch task, board policy, link sync, transition
//  6. Outcome journaled and published to the event hub
//  7. 202 Accepted with the delivery id
//
// Sync failures map onto HTTP statuses by kind: missing reference 422,
// board policy violation 409, upstream/transition failures 502.
package webhook
