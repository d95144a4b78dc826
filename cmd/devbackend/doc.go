// Command devbackend runs the in-memory listing backend used by banbds
// during development. See package devserver for the HTTP API.
//
// Environment (or .env without the prefix):
//
//	BANBDS_DEV_ADDR        listen address (default :8080)
//	BANBDS_DEV_SECRET      token signing secret (default: random per run)
//	BANBDS_DEV_DEVICE_TTL  device token lifetime (default 1h)
//	BANBDS_DEV_USER_TTL    user token lifetime (default 24h)
//	BANBDS_DEV_RENEW_GRACE validity of a token after its renewal (default 30s)
//	BANBDS_DEV_LOG_LEVEL   debug, info, warn or error
//
// A demo account 0900000000 / secret is seeded at startup.
package main
