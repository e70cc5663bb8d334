package boc

import (
	"fmt"

	"github.com/arloliu/tlb/cell"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/internal/options"
	"github.com/arloliu/tlb/section"
)

// DefaultMaxCells is the decoder cell limit when WithMaxCells is not given.
const DefaultMaxCells = 1 << 20

// Config holds the settings of one encode or decode operation. Encoding
// reads the layout flags, decoding reads the hash algorithm and the cell
// limit; each side ignores the other's settings, so one option list can
// serve both directions.
type Config struct {
	index     bool
	crc32c    bool
	cacheBits bool
	algo      cell.HashAlgorithm
	maxCells  int
}

// Option configures a Config.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (Config, error) {
	cfg := Config{
		algo:     cell.SHA256,
		maxCells: DefaultMaxCells,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks option combinations that are only invalid together.
func (c *Config) Validate() error {
	if c.cacheBits && !c.index {
		return fmt.Errorf("%w: cache bits require the offset index", errs.ErrInvalidOption)
	}

	return nil
}

// HasIndex reports whether encoding emits the offset index.
func (c *Config) HasIndex() bool { return c.index }

// HasCRC32C reports whether encoding appends a CRC32C.
func (c *Config) HasCRC32C() bool { return c.crc32c }

// HasCacheBits reports whether index entries carry cache bits.
func (c *Config) HasCacheBits() bool { return c.cacheBits }

// HashAlgorithm returns the algorithm decoded cells are hashed with.
func (c *Config) HashAlgorithm() cell.HashAlgorithm { return c.algo }

// MaxCells returns the decoder cell limit.
func (c *Config) MaxCells() int { return c.maxCells }

// maxBagSize bounds the encoded size of a bag within the cell limit.
func (c *Config) maxBagSize() uint64 {
	perCell := uint64(section.MaxCellSize + section.MaxOffsetBytes + section.MaxRefSize)
	header := uint64(section.MagicSize + 2 + 3*section.MaxRefSize + section.MaxOffsetBytes)

	return header + uint64(c.maxCells)*perCell + section.CRC32CSize
}

// WithIndex enables the offset index after the root list.
func WithIndex(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.index = enabled
	})
}

// WithCRC32C enables the trailing CRC32C checksum.
func WithCRC32C(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.crc32c = enabled
	})
}

// WithCacheBits marks index entries of cells with several parents. It
// requires WithIndex(true).
func WithCacheBits(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.cacheBits = enabled
	})
}

// WithHashAlgorithm selects the hash algorithm of decoded cells. Encoding
// accepts cells of any single algorithm.
func WithHashAlgorithm(algo cell.HashAlgorithm) Option {
	return options.New(func(c *Config) error {
		if !algo.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrInvalidOption, algo)
		}
		c.algo = algo

		return nil
	})
}

// WithMaxCells limits the number of cells a decoder accepts. The limit is
// checked against the header before anything is allocated.
func WithMaxCells(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: max cells %d", errs.ErrInvalidOption, n)
		}
		c.maxCells = n

		return nil
	})
}
