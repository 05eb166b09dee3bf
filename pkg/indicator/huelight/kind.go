package huelight

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindLight = Kind(0)
	KindGroup = Kind(1)
)

var (
	AllKinds = Kinds{
		KindLight,
		KindGroup,
	}
)

func (this *Kind) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "light":
		*this = KindLight
		return nil
	case "group", "room":
		*this = KindGroup
		return nil
	default:
		return fmt.Errorf("illegal-hue-kind: %s", plain)
	}
}

func (this Kind) String() string {
	switch this {
	case KindLight:
		return "light"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("illegal-hue-kind-%d", this)
	}
}

type Kinds []Kind

func (this *Kinds) Set(plain string) error {
	for _, plain := range strings.Split(plain, ",") {
		plain = strings.TrimSpace(plain)
		if plain != "" {
			var v Kind
			if err := v.Set(plain); err != nil {
				return err
			}
			*this = append(*this, v)
		}
	}
	return nil
}

func (this Kinds) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Kinds) String() string {
	return strings.Join(this.Strings(), ",")
}

func (this Kinds) IsCumulative() bool {
	return true
}

func (this Kinds) Has(v Kind) bool {
	if len(this) == 0 {
		return true
	}
	for _, candidate := range this {
		if v == candidate {
			return true
		}
	}
	return false
}
