// Package wlxml decodes Wayland protocol XML documents into the IR.
//
// The decoder is a single forward pass over encoding/xml tokens. Structural
// problems (missing or malformed attributes, unknown argument types, stray
// elements) are reported as diagnostics and parsing continues, so one run
// surfaces every problem of a document. Only malformed XML stops the pass.
//
// Recognised elements:
//
//	protocol(name)
//	  copyright
//	  description(summary)
//	  import(name)
//	  interface(name, version)
//	    description
//	    request|event(name, type="destructor", since, deprecated-since)
//	      description
//	      arg(name, type, interface, enum, allow-null, summary)
//	    enum(name, bitfield, since)
//	      description
//	      entry(name, value, since, summary)
package wlxml
