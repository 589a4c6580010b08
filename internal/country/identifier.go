package country

import (
	"strings"

	"github.com/samber/mo"
)

// Kind tags how an Identifier's value should be interpreted.
type Kind uint8

const (
	// KindAuto is an untyped value from a legacy caller. Lookups try both
	// interpretations.
	KindAuto Kind = iota
	// KindName is a canonical display name such as "United States".
	KindName
	// KindCode is an alpha-2 code such as "US".
	KindCode
)

// String returns the kind label used in logs.
func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindCode:
		return "code"
	default:
		return "auto"
	}
}

// Identifier is a country value tagged with its representation.
type Identifier struct {
	Value string
	Kind  Kind
}

// Name tags value as a display name.
func Name(value string) Identifier {
	return Identifier{Kind: KindName, Value: strings.TrimSpace(value)}
}

// Code tags value as an alpha-2 code.
func Code(value string) Identifier {
	return Identifier{Kind: KindCode, Value: strings.ToUpper(strings.TrimSpace(value))}
}

// Parse wraps an untyped value. The result is KindAuto: the value is kept
// verbatim and both name and code lookups are attempted for it.
func Parse(value string) Identifier {
	return Identifier{Kind: KindAuto, Value: strings.TrimSpace(value)}
}

// Infer guesses the kind of an untyped value from its length. Two-letter
// values look like codes. The guess only orders lookups; it never excludes one.
func Infer(value string) Kind {
	if len(value) == 2 {
		return KindCode
	}
	return KindName
}

// String returns the raw value, which is what storage keys use.
func (id Identifier) String() string {
	return id.Value
}

// IsZero reports whether the identifier carries no value.
func (id Identifier) IsZero() bool {
	return id.Value == ""
}

// Alternates returns the other representations of id, most likely first.
// The result never contains id's own value and is empty when no mapping exists.
func (id Identifier) Alternates() []Identifier {
	var out []Identifier
	add := func(opt mo.Option[string], wrap func(string) Identifier) {
		v, ok := opt.Get()
		if !ok || v == id.Value {
			return
		}
		for _, existing := range out {
			if existing.Value == v {
				return
			}
		}
		out = append(out, wrap(v))
	}

	switch id.Kind {
	case KindName:
		add(CodeForName(id.Value), Code)
	case KindCode:
		add(NameForCode(id.Value), Name)
	default:
		if Infer(id.Value) == KindCode {
			// "us" is stored as "US" by typed callers.
			add(mo.Some(strings.ToUpper(id.Value)), Code)
			add(NameForCode(id.Value), Name)
			add(CodeForName(id.Value), Code)
		} else {
			add(CodeForName(id.Value), Code)
			add(NameForCode(id.Value), Name)
		}
	}
	return out
}

// DisplayName returns the human readable country name for id, if known.
func (id Identifier) DisplayName() mo.Option[string] {
	switch id.Kind {
	case KindName:
		return mo.Some(id.Value)
	case KindCode:
		return NameForCode(id.Value)
	default:
		if CodeForName(id.Value).IsPresent() {
			return mo.Some(id.Value)
		}
		if name, ok := NameForCode(id.Value).Get(); ok {
			return mo.Some(name)
		}
		return mo.None[string]()
	}
}
