// Package authcore is the authentication core for the Lancer web
// application: signup, credential verification, short-lived access tokens
// paired with rotatable refresh tokens, server-side session invalidation,
// and password reset.
//
// The heart of the package is the token issuance, verification, and rotation
// protocol backed by a Redis session cache. The cache, not the token
// signature, is the authority for whether a pair is still active: every
// authenticated call re-checks the cached pair, and deleting the entry
// revokes both tokens instantly.
//
// Construct a [Core] with [New]:
//
//	core, err := authcore.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithCredentialStore(store).
//		Build()
//
// All outcomes surface as [*Error] values tagged with a [Kind]; transports
// map the kind to a status code and return the message verbatim.
package authcore
