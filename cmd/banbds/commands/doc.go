// Package commands defines the banbds CLI and wires dependencies for subcommands.
//
// Commands
//
//   - device status   Show which parts of the device identity are stored
//   - device token    Print the device token, registering the device if needed
//   - device renew    Replace the device token using the stored device id
//   - device reset    Forget the device identity
//   - fingerprint     Print the fingerprint sent on registration
//   - login / logout  Start or end the user session
//   - otp             Request a one-time code by SMS
//   - profile         Show or update the user profile
//   - posts           List your posts or show one post
//   - news, projects  Browse news and development projects
//   - upload          Upload a post image
//   - call            Send a raw authenticated request
//
// # Implementation
//
// The root command loads configuration (flags, BANBDS_* environment and an
// optional .env file), opens the session store and builds the dependency
// graph before any subcommand runs. Every backend call goes through the
// gateway, which renews a rejected device token at most once per call.
package commands
