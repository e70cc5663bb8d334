package boc

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// Marshal encodes bag with opts.
func Marshal(bag *Bag, opts ...Option) ([]byte, error) {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(bag)
}

// Unmarshal decodes a bag that occupies all of data.
func Unmarshal(data []byte, opts ...Option) (*Bag, error) {
	dec, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return dec.Decode(data)
}

// MarshalBase64 encodes bag as standard padded base64, the form TON tools
// exchange bags in.
func MarshalBase64(bag *Bag, opts ...Option) (string, error) {
	data, err := Marshal(bag, opts...)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// UnmarshalBase64 decodes a base64 bag. Standard and URL alphabets are both
// accepted, with or without padding.
func UnmarshalBase64(s string, opts ...Option) (*Bag, error) {
	data, err := decodeBase64(s)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data, opts...)
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	enc := base64.StdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.URLEncoding
	}
	if !strings.HasSuffix(s, "=") {
		enc = enc.WithPadding(base64.NoPadding)
	}

	data, err := enc.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", errs.ErrInvalidValue, err)
	}

	return data, nil
}

// MarshalText implements encoding.TextMarshaler with the default options.
func (b *Bag) MarshalText() ([]byte, error) {
	data, err := Marshal(b)
	if err != nil {
		return nil, err
	}

	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)

	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bag) UnmarshalText(text []byte) error {
	bag, err := UnmarshalBase64(string(text))
	if err != nil {
		return err
	}
	b.roots = bag.roots

	return nil
}

// PackBits writes the encoded bag with the default options, making a Bag
// usable wherever a bits.Packer is.
func (b *Bag) PackBits(w bits.Writer) error {
	return As().PackAs(w, b)
}

// UnpackBits reads a bag from r. Bits following the bag are left unread.
func (b *Bag) UnpackBits(r bits.Reader) error {
	bag, err := As().UnpackAs(r)
	if err != nil {
		return err
	}
	b.roots = bag.roots

	return nil
}

// As returns a bit strategy that stores a bag encoded with opts, for bags
// embedded in a larger bit stream.
func As(opts ...Option) bits.Strategy[*Bag] {
	return bits.Bind[*Bag, []Option](bagAs{}, opts)
}

type bagAs struct{}

func (bagAs) PackAsWith(w bits.Writer, bag *Bag, opts []Option) error {
	data, err := Marshal(bag, opts...)
	if err != nil {
		return err
	}

	return w.WriteBits(bits.FromBytes(data))
}

func (bagAs) UnpackAsWith(r bits.Reader, opts []Option) (*Bag, error) {
	dec, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return dec.DecodeBits(r)
}
