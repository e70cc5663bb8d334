package section

// Magic numbers identifying a serialized bag of cells.
const (
	MagicGeneric       uint32 = 0xB5EE9C72 // serialized_boc#b5ee9c72
	MagicIndexed       uint32 = 0x68FF65F3 // legacy serialized_boc_idx#68ff65f3
	MagicIndexedCRC32C uint32 = 0xACC3A728 // legacy serialized_boc_idx_crc32c#acc3a728
)

// Flag byte masks of the generic header.
const (
	HasIdxMask        = 0x80 // bit 7: offset index present
	HasCRC32CMask     = 0x40 // bit 6: trailing CRC32C present
	HasCacheBitsMask  = 0x20 // bit 5: index entries carry a cache bit
	ReservedFlagsMask = 0x18 // bits 3-4: must be zero
	SizeMask          = 0x07 // bits 0-2: byte width of cell indices
)

// Sizes and limits of the byte layout.
const (
	MagicSize      = 4
	CRC32CSize     = 4
	DescriptorSize = 2
	MinRefSize     = 1
	MaxRefSize     = 4
	MinOffsetBytes = 1
	MaxOffsetBytes = 8

	// MaxCellDataSize is the padded data size of a full 1023-bit cell.
	MaxCellDataSize = 128
	// MaxCellRefs is the largest reference count of an ordinary cell.
	MaxCellRefs = 4
	// MaxCellSize is the largest serialized cell with 4-byte indices.
	MaxCellSize = DescriptorSize + MaxCellDataSize + MaxCellRefs*MaxRefSize
)
