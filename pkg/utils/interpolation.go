package utils

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b（t 不做截断）
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Remap 将 value 从区间 [min1, max1] 线性映射到 [min2, max2]
//
// 公式：(value - min1) / (max1 - min1) * (max2 - min2) + min2
//
// 注意：源区间退化（min1 == max1）时返回 min2，不会产生 NaN
func Remap(value, min1, max1, min2, max2 float64) float64 {
	span := max1 - min1
	if span == 0 {
		return min2
	}
	return (value-min1)/span*(max2-min2) + min2
}
