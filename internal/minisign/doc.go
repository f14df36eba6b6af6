// Package minisign parses and formats the detached-signature text that
// accompanies a content pack.
//
// The format is three non-empty lines, with an optional fourth:
//
//	untrusted comment: <free text>
//	<base64 of the 64-byte Ed25519 signature>
//	trusted comment: <free text containing key_id:<token>>
//	<base64 of an optional 64-byte global signature>
//
// The signing key is named by a key_id:<token> sub-field inside the trusted
// comment, where token is one or more characters of [A-Za-z0-9_-]. A trusted
// comment without a recognisable key id is a parse error, never a silent
// default.
//
// Parsing is strict: CRLF is normalised to LF first, base64 must decode
// cleanly under strict rules, and any violation yields a ParseError with a
// distinct Kind. For every well-formed input t, Parse(t).Format() is
// byte-equal to Normalize(t).
package minisign
