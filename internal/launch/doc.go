// Package launch is the configuration side of the runtime bootstrap.
//
// Launch agents read the attributes of a container manifest and feed the
// configuration names and token providers they declare into a Registry,
// which the bootstrap later drains. Agents are built from a table of named
// factories; an agent that cannot be built or fails while preparing is
// recorded as a failure and never stops the others.
package launch
