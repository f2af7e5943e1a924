package geo

// geohash 字母表（base32，去掉 a/i/l/o）
const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Geohash：位置的 base32 geohash；用作标记属性与缓存键
// 约束：precision<=0 时取 7（约 150m）
func Geohash(l Location, precision int) string {
	if precision <= 0 {
		precision = 7
	}
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0
	out := make([]byte, 0, precision)
	ch, bit := 0, 0
	even := true
	for len(out) < precision {
		if even {
			mid := (lonLo + lonHi) / 2
			if l.Lon >= mid {
				ch |= 1 << (4 - bit)
				lonLo = mid
			} else {
				lonHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if l.Lat >= mid {
				ch |= 1 << (4 - bit)
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
			continue
		}
		out = append(out, geohashAlphabet[ch])
		bit, ch = 0, 0
	}
	return string(out)
}
