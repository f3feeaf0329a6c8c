// Package htmlutils sanitizes and rewrites the HTML found in notes.
//
// # Overview
//
// htmlutils feeds HTML through the golang.org/x/net/html tokenizer and
// reacts to the resulting open tag, text and close tag events. Nothing is
// built in memory besides a stack of open tag names, so the output keeps
// the structure and attribute order of the input.
//
// # Sanitizing
//
// [SanitizeHTML] removes everything that can run code or change how the
// rest of the page is loaded, and keeps everything else:
//   - script, iframe, object, embed, base, link, meta, noscript and form
//     controls are removed along with their whole content
//   - attributes starting with "on" (event handlers) are removed
//   - anchors may only link to http, https and mailto URLs; any other
//     href becomes "#", and anchors without href get one
//   - text is entity-encoded again, except inside style where only "<"
//     is encoded
//
// Sanitizing is idempotent: sanitizing sanitized output does not change
// it.
//
// # Plain text
//
// [StripHTML] returns the readable text of a document on a single line.
//
// # Rewriting resources
//
// [ProcessImageTags] and [ProcessAnchorTags] call a [RewriteFunc] for
// every <img src> and <a href> so that application URLs can be resolved.
// They use regular expressions and are not meant for untrusted input.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Every call allocates its own
// state.
//
// # Example
//
//	clean := htmlutils.SanitizeHTML(noteBody, &htmlutils.SanitizeOptions{
//		AddNoMdConvClass: true,
//	})
package htmlutils
