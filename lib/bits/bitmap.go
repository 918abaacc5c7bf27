package bits

const (
	x32BitmapShift = 5
	x32BitmapMask  = 1<<x32BitmapShift - 1
	maxBitMapSize  = 1 << 32
)

// Bitmap is a fixed size bit set addressed by offset.
type Bitmap interface {
	SetBit(offset uint64) bool
	UnsetBit(offset uint64) bool
	GetBit(offset uint64) bool
}

var _ Bitmap = (*x32Bitmap)(nil)

// x32Bitmap packs bits into uint32 words.
// Out of range offsets are ignored by the setters and read as 0.
type x32Bitmap struct {
	bits []uint32
	size uint64
}

func (bm *x32Bitmap) SetBit(offset uint64) bool {
	if offset >= bm.size {
		return false
	}
	bm.bits[offset>>x32BitmapShift] |= 1 << (offset & x32BitmapMask)
	return true
}

func (bm *x32Bitmap) UnsetBit(offset uint64) bool {
	if offset >= bm.size {
		return false
	}
	bm.bits[offset>>x32BitmapShift] &^= 1 << (offset & x32BitmapMask)
	return true
}

func (bm *x32Bitmap) GetBit(offset uint64) bool {
	if offset >= bm.size {
		return false
	}
	return bm.bits[offset>>x32BitmapShift]&(1<<(offset&x32BitmapMask)) != 0
}

// NewX32Bitmap creates a bitmap holding at least size bits.
// The size is truncated to maxBitMapSize.
func NewX32Bitmap(size uint64) Bitmap {
	if size > maxBitMapSize {
		size = maxBitMapSize
	}
	return &x32Bitmap{
		bits: make([]uint32, (size+x32BitmapMask)>>x32BitmapShift),
		size: size,
	}
}
