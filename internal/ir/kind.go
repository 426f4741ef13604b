package ir

// ArgKind is the wire kind of a message argument.
type ArgKind uint8

const (
	ArgInvalid ArgKind = iota
	ArgInt             // signed 32-bit
	ArgUint            // unsigned 32-bit
	ArgFixed           // 24.8 fixed point
	ArgString
	ArgObject // object reference
	ArgArray
	ArgFD
	ArgNewID
)

var argKindNames = [...]string{
	ArgInvalid: "invalid",
	ArgInt:     "int",
	ArgUint:    "uint",
	ArgFixed:   "fixed",
	ArgString:  "string",
	ArgObject:  "object",
	ArgArray:   "array",
	ArgFD:      "fd",
	ArgNewID:   "new_id",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return "invalid"
}

// ParseArgKind maps the wire type attribute to an ArgKind.
func ParseArgKind(s string) (ArgKind, bool) {
	for k := ArgInt; k <= ArgNewID; k++ {
		if argKindNames[k] == s {
			return k, true
		}
	}
	return ArgInvalid, false
}

// AllowsNullable reports whether allow-null is legal for the kind.
func (k ArgKind) AllowsNullable() bool {
	return k == ArgString || k == ArgObject || k == ArgArray
}

// AllowsInterface reports whether an interface attribute is legal for the kind.
func (k ArgKind) AllowsInterface() bool {
	return k == ArgObject || k == ArgNewID
}

// AllowsEnum reports whether an enum attribute is legal for the kind.
func (k ArgKind) AllowsEnum() bool {
	return k == ArgInt || k == ArgUint
}

// MarshalText keeps serialized IR readable.
func (k ArgKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the wire names produced by MarshalText.
func (k *ArgKind) UnmarshalText(b []byte) error {
	parsed, ok := ParseArgKind(string(b))
	if !ok {
		*k = ArgInvalid
		return nil
	}
	*k = parsed
	return nil
}

// MessageKind tells requests from events.
type MessageKind uint8

const (
	Request MessageKind = iota + 1 // client -> server
	Event                          // server -> client
)

func (k MessageKind) String() string {
	switch k {
	case Request:
		return "request"
	case Event:
		return "event"
	}
	return "unknown"
}
