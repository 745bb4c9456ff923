// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 quantizes a normalized sample to 16-bit PCM: scale by
// 2^15, round half to even, clip to [-32768, 32767].
func Float32ToInt16(x float32) int16 {
	v := math.RoundToEven(float64(x) * 32768.0)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Float32ToInt24 quantizes a normalized sample to 24-bit PCM stored in
// an int32: scale by 2^23, round half to even, clip to
// [-8388608, 8388607].
func Float32ToInt24(x float32) int32 {
	v := math.RoundToEven(float64(x) * 8388608.0)
	if v > 8388607 {
		return 8388607
	}
	if v < -8388608 {
		return -8388608
	}
	return int32(v)
}
