// Package userauth implements a user-management and authentication core:
// bcrypt credential hashing, signed access/refresh token issuance,
// refresh rotation with revocation, role-based permission checks, and
// account lifecycle transitions.
//
// The package exposes decision functions only. Persistence and
// revocation tracking are delegated to collaborator contracts:
//   - UserStore is the durable account record store. A Bun-backed
//     implementation lives in the repository package.
//   - Blacklist tracks revoked refresh-token ids until natural expiry.
//     NoopBlacklist and MemoryBlacklist ship here; a Redis adapter
//     lives in adapters/redisblacklist.
//
// Tokens:
//   - Access tokens are short-lived and stateless. They embed the
//     username and role set so permission checks need no store lookup.
//     A role change therefore takes effect on next issuance, not on
//     existing tokens.
//   - Refresh tokens are long-lived and carry a unique jti. Validity
//     requires signature, expiry, and absence from the Blacklist.
//
// All operations return structured errors with stable text codes so a
// transport layer can map them to status codes without string matching.
package userauth
