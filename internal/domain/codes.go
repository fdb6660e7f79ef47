package domain

import (
	"fmt"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	alphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	digits       = "0123456789"
	letters      = "ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// CodeGenerator produces card codes such as COACH-AB12-999-XYZ.
type CodeGenerator struct {
	block   func() string
	number  func() string
	suffix  func() string
	voucher func() string
}

// minNanoidLength is the shortest id nanoid.CustomASCII fills; shorter
// generators draw zero random bytes per round and never return.
const minNanoidLength = 5

func NewCodeGenerator() (*CodeGenerator, error) {
	block, err := fixedLength(alphanumeric, 4)
	if err != nil {
		return nil, err
	}
	number, err := fixedLength(digits, 3)
	if err != nil {
		return nil, err
	}
	suffix, err := fixedLength(letters, 3)
	if err != nil {
		return nil, err
	}
	voucher, err := fixedLength(alphanumeric, 8)
	if err != nil {
		return nil, err
	}
	return &CodeGenerator{block: block, number: number, suffix: suffix, voucher: voucher}, nil
}

func fixedLength(alphabet string, n int) (func() string, error) {
	gen, err := nanoid.CustomASCII(alphabet, max(n, minNanoidLength))
	if err != nil {
		return nil, err
	}
	return func() string { return gen()[:n] }, nil
}

func (g *CodeGenerator) GiftCardCode(t IssuerType) string {
	return fmt.Sprintf("%s-%s-%s-%s", t, g.block(), g.number(), g.suffix())
}

func (g *CodeGenerator) DiscountCardCode() string {
	return "DISC-" + g.voucher()
}

// MustCodeGenerator is NewCodeGenerator for the fixed alphabets above, which
// never fail to build.
func MustCodeGenerator() *CodeGenerator {
	g, err := NewCodeGenerator()
	if err != nil {
		panic(err)
	}
	return g
}
