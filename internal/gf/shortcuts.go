package gf

// Multiply-by-constant shortcuts for the AES MixColumns matrices, built from
// XTime alone.

// MulBy2 returns 2·a.
func MulBy2(a byte) byte { return XTime(a) }

// MulBy3 returns 3·a.
func MulBy3(a byte) byte { return XTime(a) ^ a }

// MulBy4 returns 4·a.
func MulBy4(a byte) byte { return XTime(XTime(a)) }

// MulBy8 returns 8·a.
func MulBy8(a byte) byte { return XTime(MulBy4(a)) }

// MulBy9 returns 9·a.
func MulBy9(a byte) byte { return MulBy8(a) ^ a }

// MulBy11 returns 11·a.
func MulBy11(a byte) byte { return XTime(MulBy4(a)^a) ^ a }

// MulBy13 returns 13·a.
func MulBy13(a byte) byte { return MulBy4(XTime(a)^a) ^ a }

// MulBy14 returns 14·a.
func MulBy14(a byte) byte { return XTime(XTime(XTime(a)^a) ^ a) }
