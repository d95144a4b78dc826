// Package app wires application dependencies for the CLI.
//
// It loads Config, opens the configured session store and builds the
// backend client, device session, gateway and endpoint services, exposing
// them via App for commands to use.
package app
