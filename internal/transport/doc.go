// Package transport provides the in-process gossip bus. Peer discovery and
// framing belong to the transport; the sync layer only publishes and
// subscribes to opaque bytes on a topic.
package transport
