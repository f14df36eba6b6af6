// Package relay implements the HTTP relay transport: a store-and-forward
// server holding recent messages per topic, and a polling client that
// satisfies the same publish/subscribe contract as the in-process bus.
//
// The relay is an untrusted middleman. It only ever sees sealed sync
// messages; confidentiality and authenticity are enforced end to end by the
// envelope layer, and duplicates introduced by polling are absorbed by the
// replay guard.
//
// HTTP API
//
//	POST /topics/{topic}
//	    Enqueue one message (JSON {"data": base64}) on {topic}.
//
//	GET /topics/{topic}?after=N
//	    Return messages with sequence number greater than N, oldest first.
//	    Each carries its sequence number so the client can resume.
package relay
