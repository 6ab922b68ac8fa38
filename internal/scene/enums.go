package scene

import (
	"fmt"
	"strings"
)

// Kind is the geometric rendering mode of a material.
type Kind uint8

const (
	KindSolid Kind = iota
	KindWire
)

var kindNames = []string{"solid", "wire"}

func (k Kind) String() string { return enumName(kindNames, int(k)) }

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := parseEnum("kind", kindNames, b)
	*k = Kind(v)
	return err
}

// Blend is the compositing policy of a material inside the visibility stack.
type Blend uint8

const (
	// BlendAlpha composites with the over operator, optionally additive.
	BlendAlpha Blend = iota
	// BlendEnv replaces: everything behind it in its conflict run is dropped and
	// it occludes fully regardless of alpha.
	BlendEnv
	// BlendErase blends with its own alpha but erases what lies behind it in
	// its conflict run.
	BlendErase
)

var blendNames = []string{"alpha", "env", "erase"}

func (b Blend) String() string { return enumName(blendNames, int(b)) }

func (b Blend) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Blend) UnmarshalText(t []byte) error {
	v, err := parseEnum("blend", blendNames, t)
	*b = Blend(v)
	return err
}

// LampKind selects the light model of a lamp.
type LampKind uint8

const (
	LampPoint LampKind = iota
	LampSun
	LampSpot
	LampHemi
)

var lampNames = []string{"point", "sun", "spot", "hemi"}

func (k LampKind) String() string { return enumName(lampNames, int(k)) }

func (k LampKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *LampKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("lamp kind", lampNames, b)
	*k = LampKind(v)
	return err
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(what string, names []string, b []byte) (int, error) {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" {
		return 0, nil
	}
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalid, what, s)
}
