// Command vetchat runs the FIP assistant relay and a terminal chat client.
//
// Usage:
//
//	# Start the relay with defaults and VETCHAT_* environment overrides
//	vetchat run
//
//	# Start with a configuration file, reloading the log level on change
//	vetchat run --config /etc/vetchat/config.yaml
//
//	# Chat through a running relay, attaching bloodwork and photos
//	vetchat chat --relay http://127.0.0.1:8080/api/chat
//
//	# Check configuration, credentials and the knowledge base
//	vetchat validate --config config.yaml
package main

import "os"

func main() {
	os.Exit(Execute())
}
