package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// AscKeyComparator is the natural order of K.
// NaN keys are not ordered, don't use them as keys.
func AscKeyComparator[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// DescKeyComparator reverses the natural order of K.
func DescKeyComparator[K OrderedKey](i, j K) int64 {
	return -AscKeyComparator[K](i, j)
}

// KeyComparator picks the natural or the reversed order.
func KeyComparator[K OrderedKey](isDesc bool) OrderedKeyComparator[K] {
	if isDesc {
		return DescKeyComparator[K]
	}
	return AscKeyComparator[K]
}
